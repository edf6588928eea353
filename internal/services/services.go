// package services defines the catalog, preview and account services used by the workflows and the HTTP API
package services

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/shared"
)

// CatalogStack is the wired catalog integration layer built from config.
type CatalogStack struct {
	Credentials *TokenCache
	Catalog     *SpotifyCatalog
	Previews    *EmbedPreviewResolver
}

// NewCatalogStack builds the credential cache, catalog client and preview resolver described by cfg.
func NewCatalogStack(cfg *shared.Config, client *http.Client, logger *log.Logger) (*CatalogStack, error) {
	sp := cfg.Credentials.Spotify
	exchanger, err := NewClientCredentialsExchanger(sp.ClientID, sp.ClientSecret, sp.TokenURL, cfg.Catalog.TokenTimeout.Duration, client)
	if err != nil {
		return nil, err
	}

	creds := NewTokenCache(exchanger, WithTokenLogger(shared.WithLogger(logger, "component", "credentials")))

	catalog := NewSpotifyCatalog(creds, CatalogOptions{
		BaseURL:           sp.APIURL,
		Timeout:           cfg.Catalog.Timeout.Duration,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
		RetryBackoff:      cfg.Catalog.RetryBackoff.Duration,
		HTTPClient:        client,
		Logger:            shared.WithLogger(logger, "component", "catalog"),
	})

	previews := NewEmbedPreviewResolver(sp.EmbedURL, cfg.Catalog.PreviewTimeout.Duration, client, shared.WithLogger(logger, "component", "previews"))

	return &CatalogStack{Credentials: creds, Catalog: catalog, Previews: previews}, nil
}
