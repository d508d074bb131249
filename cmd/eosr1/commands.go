package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mahdiidarabi/eosr1/pkg/eosr1"
)

// readMessage returns --message, or the content of --file.
func readMessage(message, file string) (string, error) {
	switch {
	case message != "" && file != "":
		return "", errors.New("use either --message or --file, not both")
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read message: %w", err)
		}
		return string(b), nil
	case message != "":
		return message, nil
	default:
		return "", errors.New("--message or --file is required")
	}
}

func (a *app) signCmd() *cobra.Command {
	var message, file string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a JSON payload and print the SIG_R1_ signature",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := readMessage(message, file)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			sig, err := client.Sign(cmd.Context(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&message, "message", "", "Payload to sign")
	cmd.Flags().StringVar(&file, "file", "", "File holding the payload to sign")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var signature, message, file string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a SIG_R1_ signature against the configured public key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := readMessage(message, file)
			if err != nil {
				return err
			}
			if a.cfg.PublicKey == "" {
				return errors.New("a public key is required")
			}
			pub, err := eosr1.DecodePublicKey(a.cfg.PublicKey)
			if err != nil {
				return err
			}
			valid, err := eosr1.Verify(signature, pub, payload)
			a.metrics.ObserveVerify(valid, err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), valid)
			if !valid {
				return errors.New("signature does not verify")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&signature, "signature", "", "SIG_R1_ signature")
	cmd.Flags().StringVar(&message, "message", "", "Signed payload")
	cmd.Flags().StringVar(&file, "file", "", "File holding the signed payload")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func (a *app) decodeKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-key <PVT_R1_...|PUB_R1_...>",
		Short: "Print the numeric content of an R1 key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			key := args[0]

			var pub *eosr1.PublicKey
			switch {
			case strings.HasPrefix(key, eosr1.PrivateKeyPrefix):
				priv, err := eosr1.DecodePrivateKey(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "d: %s\n", priv.D.String())
				if pub, err = priv.PublicKey(); err != nil {
					return err
				}
				fmt.Fprintf(w, "public key: %s\n", pub)
			case strings.HasPrefix(key, eosr1.PublicKeyPrefix):
				var err error
				if pub, err = eosr1.DecodePublicKey(key); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown key prefix", eosr1.ErrFormat)
			}

			fmt.Fprintf(w, "x: %s\n", hex.EncodeToString(pub.X.FillBytes(make([]byte, 32))))
			fmt.Fprintf(w, "y: %s\n", hex.EncodeToString(pub.Y.FillBytes(make([]byte, 32))))
			fmt.Fprintf(w, "compressed: %s\n", hex.EncodeToString(pub.Compressed()))
			return nil
		},
	}
}

func (a *app) pemCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "pem [PUB_R1_...]",
		Short: "Convert a public key to PEM, or extract raw key bytes from a PEM file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if from != "" {
				b, err := os.ReadFile(from)
				if err != nil {
					return fmt.Errorf("failed to read PEM: %w", err)
				}
				raw, err := eosr1.FromPem(string(b))
				if err != nil {
					return err
				}
				fmt.Fprintln(w, hex.EncodeToString(raw))
				return nil
			}

			key := a.cfg.PublicKey
			if len(args) == 1 {
				key = args[0]
			}
			if key == "" {
				return errors.New("a public key argument or --from is required")
			}
			out, err := eosr1.ToPem(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "PEM file to extract raw key bytes from")
	return cmd
}

func (a *app) serializeCmd() *cobra.Command {
	var source, format string
	cmd := &cobra.Command{
		Use:   "serialize",
		Short: "Convert raw (r, s) signatures made with the configured key to SIG_R1_ strings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.PublicKey == "" {
				return errors.New("a public key is required")
			}
			pub, err := eosr1.DecodePublicKey(a.cfg.PublicKey)
			if err != nil {
				return err
			}

			var parser eosr1.SignatureParser
			switch format {
			case "json":
				parser = &eosr1.JSONParser{}
			case "csv":
				parser = &eosr1.CSVParser{}
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			raws, err := parser.ParseSignatures(source)
			if err != nil {
				return fmt.Errorf("failed to parse signatures: %w", err)
			}
			a.logger.Info("loaded raw signatures", zap.Int("count", len(raws)), zap.String("source", source))

			for i, raw := range raws {
				digest, ok := raw.Digest()
				if !ok {
					return fmt.Errorf("signature %d: %w: digest does not fit 32 bytes", i, eosr1.ErrFormat)
				}
				sig, err := eosr1.SerializeSignature(raw.R, raw.S, digest, pub)
				if err != nil {
					return fmt.Errorf("signature %d: %w", i, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), sig)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "signatures", "", "Path to signatures file (JSON or CSV)")
	cmd.Flags().StringVar(&format, "format", "json", "Signature file format (json or csv)")
	_ = cmd.MarkFlagRequired("signatures")
	return cmd
}

func (a *app) batchCmd() *cobra.Command {
	var file string
	var workers int
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Sign every non-empty line of a file, printing one signature per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			var messages []string
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					messages = append(messages, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			if workers == 0 {
				workers = a.cfg.Workers
			}

			failed := 0
			for _, res := range client.SignBatch(cmd.Context(), messages, workers) {
				if res.Err != nil {
					failed++
					a.logger.Error("failed to sign line", zap.Int("index", res.Index), zap.Error(res.Err))
					fmt.Fprintln(cmd.OutOrStdout())
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Signature)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d messages could not be signed", failed, len(messages))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File with one payload per line")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel workers (0 = config or CPU count)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
