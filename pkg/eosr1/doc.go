// Package eosr1 signs and verifies API requests with EOS-style secp256r1
// ("R1") keys.
//
// Keys and signatures travel as Base58 strings with a 4-byte RIPEMD-160
// checksum over the payload and the "R1" tag:
//
//	PVT_R1_<base58(32-byte scalar ++ checksum)>
//	PUB_R1_<base58(33-byte compressed point ++ checksum)>
//	SIG_R1_<base58(header ++ r ++ s ++ checksum)>
//
// Signatures are canonical: s is in the lower half of the curve order and
// neither r nor s has a redundant leading byte. The header byte is the
// recovery id plus 31.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/eosr1/pkg/eosr1"
//
//	sig, err := eosr1.SignRequest(privateWIF, publicAddr, payload)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ok, err := eosr1.VerifyRequest(sig, publicAddr, payload)
//
// # Client
//
// A Client decodes the key pair once, checks that it belongs together and can
// log, report metrics and sign batches:
//
//	client, err := eosr1.NewClient(privateWIF, publicAddr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client = client.WithLogger(logger).WithMaxAttempts(64)
//
//	sig, err := client.Sign(ctx, payload)
//
// # Raw signatures
//
// Externally produced (r, s) pairs can be serialized with SerializeSignature,
// or loaded in bulk from JSON or CSV through a SignatureParser and
// Client.SerializeFile.
package eosr1
