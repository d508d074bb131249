package eosr1

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.uber.org/zap"
)

// Observer receives the outcome of every signing and verification made
// through a Client. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveSign(attempts int, err error)
	ObserveVerify(valid bool, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveSign(int, error)    {}
func (nopObserver) ObserveVerify(bool, error) {}

// Client signs and verifies requests with a fixed key pair. It is safe for
// concurrent use once configured.
type Client struct {
	priv        *PrivateKey
	pub         *PublicKey
	logger      *zap.Logger
	observer    Observer
	parser      SignatureParser
	maxAttempts int
}

// NewClient decodes the key pair and checks that the private key derives the
// public key.
//
// Args:
//   - privateWIF: "PVT_R1_" private key
//   - publicAddr: "PUB_R1_" public key
//
// Returns:
//   - a Client with a no-op logger, or ErrKeyMismatch / a decoding error
func NewClient(privateWIF, publicAddr string) (*Client, error) {
	priv, err := DecodePrivateKey(privateWIF)
	if err != nil {
		return nil, err
	}
	pub, err := DecodePublicKey(publicAddr)
	if err != nil {
		return nil, err
	}
	derived, err := priv.PublicKey()
	if err != nil {
		return nil, err
	}
	if !derived.Equal(pub) {
		return nil, ErrKeyMismatch
	}

	return &Client{
		priv:        priv,
		pub:         pub,
		logger:      zap.NewNop(),
		observer:    nopObserver{},
		parser:      &JSONParser{},
		maxAttempts: DefaultMaxSignAttempts,
	}, nil
}

// WithLogger sets the logger. Key material is never logged.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger.With(zap.String("public_key", c.pub.String()))
	}
	return c
}

// WithObserver sets the observer notified of every operation.
func (c *Client) WithObserver(observer Observer) *Client {
	if observer != nil {
		c.observer = observer
	}
	return c
}

// WithParser sets the raw signature parser used by SerializeFile.
func (c *Client) WithParser(parser SignatureParser) *Client {
	if parser != nil {
		c.parser = parser
	}
	return c
}

// WithMaxAttempts sets the canonical-retry budget.
func (c *Client) WithMaxAttempts(n int) *Client {
	if n > 0 {
		c.maxAttempts = n
	}
	return c
}

// PublicKey returns the client's public key.
func (c *Client) PublicKey() *PublicKey {
	return c.pub
}

// Sign signs message and returns the "SIG_R1_" signature.
func (c *Client) Sign(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := SignDigest(rand.Reader, c.priv, c.pub, HashMessage([]byte(message)), c.maxAttempts)
	if err != nil {
		c.observer.ObserveSign(c.maxAttempts, err)
		c.logger.Error("failed to sign message", zap.Error(err))
		return "", err
	}

	c.observer.ObserveSign(res.Attempts, nil)
	c.logger.Debug("signed message",
		zap.Int("attempts", res.Attempts),
		zap.Int("recovery_id", res.RecoveryID),
		zap.Int("message_bytes", len(message)))
	return res.Signature, nil
}

// Verify checks signature over message against the client's public key.
func (c *Client) Verify(ctx context.Context, signature, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	valid, err := Verify(signature, c.pub, message)
	c.observer.ObserveVerify(valid, err)
	if err != nil {
		c.logger.Warn("malformed signature", zap.Error(err))
		return false, err
	}
	c.logger.Debug("verified signature", zap.Bool("valid", valid))
	return valid, nil
}

// SerializeFile loads raw (r, s) signatures from source with the client's
// parser and converts each one to the EOS format.
func (c *Client) SerializeFile(ctx context.Context, source string) ([]string, error) {
	raws, err := c.parser.ParseSignatures(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signatures: %w", err)
	}
	return c.SerializeSignatures(ctx, raws)
}

// SerializeSignatures converts raw signatures made with the client's key to
// the EOS format.
func (c *Client) SerializeSignatures(ctx context.Context, raws []*RawSignature) ([]string, error) {
	out := make([]string, 0, len(raws))
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		digest, ok := raw.Digest()
		if !ok {
			return nil, fmt.Errorf("signature %d: %w: digest does not fit 32 bytes", i, ErrFormat)
		}
		sig, err := SerializeSignature(raw.R, raw.S, digest, c.pub)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		out = append(out, sig)
	}
	c.logger.Debug("serialized raw signatures", zap.Int("count", len(out)))
	return out, nil
}
