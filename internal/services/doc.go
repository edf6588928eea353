// Package services implements the catalog integration layer and the account services behind the HTTP API.
//
// # Credentials
//
// [TokenCache] implements [CredentialCache] around a single client-credentials token.
// It exchanges lazily on first use and again whenever the stored expiry has passed.
// The exchange itself is an [Exchanger]; [ClientCredentialsExchanger] uses [clientcredentials.Config].
//
// # Catalog
//
// [SpotifyCatalog] implements [Catalog] with four read-only lookups (search, new-release albums,
// album tracks, track by id). Every call:
//   - takes its bearer token from the [CredentialCache]
//   - waits on a client-side rate limiter
//   - is bounded by a per-call timeout
//   - is retried once after a backoff on network errors, 429 and 5xx
//   - refreshes the token once on 401
//
// Non-2xx responses surface as [*RequestError], which matches [shared.ErrCatalogRequest].
//
// # Previews
//
// [EmbedPreviewResolver] implements [PreviewResolver] by reading the provider's public embed page.
// A missing preview is a normal outcome and is never returned as an error.
//
// # Normalization
//
// [NormalizeTrack] is the pure mapping from [SpotifyTrack] to [models.Track].
//
// # Accounts
//
// [AccountService] handles signup and login with bcrypt hashes and HS256 session tokens.
// [Library] stores theme preferences and favorites through the [UserStore] and [FavoriteStore] interfaces.
package services
