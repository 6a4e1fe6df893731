/*
Package authsdk is a small relying-party client for the OpenID provider in
this repository, and the home of the OAuth2 error vocabulary the provider
itself writes.

# Authorization code flow

	client := authsdk.NewSDKClient("https://id.example.com")
	if _, err := client.Discover(ctx); err != nil {
		return err
	}

	pkce, _ := authsdk.GeneratePKCEChallenge()
	redirect := client.BuildAuthorizeURL(authsdk.AuthorizeRequest{
		ClientID:    "client-abc123",
		RedirectURI: "https://app.example.com/cb",
		Scopes:      []string{"openid", "profile"},
		State:       state,
		Nonce:       nonce,
		PKCE:        pkce,
	})
	// send the browser to redirect, then on the callback:

	cb, err := authsdk.ParseAuthorizationCallback(r.URL.String(), state)
	tokens, err := client.ExchangeAuthorizationCode(ctx, "client-abc123", secret, cb.Code, "https://app.example.com/cb", pkce.Verifier)

Verify the ID token against the published keys and check its audience and
nonce yourself:

	v, err := client.NewIDTokenVerifier(ctx, "https://id.example.com")
	claims, err := v.VerifyMap(tokens.IDToken)

# Errors

Every non-2xx response is returned as *OAuth2Error. Errors compare by code,
so errors.Is(err, authsdk.ErrInvalidGrant) works whatever the description.
A code can only be redeemed once; a second exchange always yields
invalid_grant.
*/
package authsdk
