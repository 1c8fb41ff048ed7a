// Package tokensource stores the access token used by the OAuth word source
// between invocations.
//
// Three backends are available:
//   - EnvStore is read-only and serves a token that came from configuration
//   - FileStore keeps the token in a 0600 file
//   - KeyringStore uses the operating system keyring
//
// Writing an empty token clears it, which keeps logout independent of the
// backend:
//
//	store := tokensource.NewKeyringStore("momo", clientID)
//	_ = store.Write(ctx, token.AccessToken) // auth login
//	_ = store.Write(ctx, "")                // auth logout
package tokensource
