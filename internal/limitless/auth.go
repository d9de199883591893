package limitless

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// Login signs the server's challenge message with the EOA key and stores
// the returned session cookie.
func (c *Client) Login(ctx context.Context) error {
	if c.signer == nil {
		return errors.New("limitless login: no private key configured")
	}

	message, err := c.signingMessage(ctx)
	if err != nil {
		return err
	}

	signature, err := c.sign(message)
	if err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"client": "eoa"},
		headers: map[string]string{
			"x-account":         c.address,
			"x-signing-message": "0x" + hex.EncodeToString([]byte(message)),
			"x-signature":       signature,
		},
	})
	if err != nil {
		return fmt.Errorf("limitless login: %w", err)
	}

	for _, ck := range resp.cookies {
		if ck.Name == SessionCookie && ck.Value != "" {
			c.session = ck.Value
			c.logger.Info("logged in", "address", c.address)
			return nil
		}
	}
	return fmt.Errorf("limitless login: response carried no %s cookie", SessionCookie)
}

func (c *Client) signingMessage(ctx context.Context) (string, error) {
	resp, err := c.doWithRetry(ctx, request{method: http.MethodGet, path: "/auth/signing-message"})
	if err != nil {
		return "", fmt.Errorf("fetching signing message: %w", err)
	}
	message := strings.TrimSpace(string(resp.body))
	if message == "" {
		return "", errors.New("fetching signing message: empty message")
	}
	return message, nil
}

// sign produces a personal_sign (EIP-191) signature with V in {27, 28}.
func (c *Client) sign(message string) (string, error) {
	hash := accounts.TextHash([]byte(message))
	sig, err := crypto.Sign(hash, c.signer)
	if err != nil {
		return "", fmt.Errorf("signing auth message: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return "0x" + hex.EncodeToString(sig), nil
}
