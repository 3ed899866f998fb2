package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"

	"revix/internal/domain"
	"revix/internal/infra/abi"
	"revix/internal/infra/crypto"
	"revix/internal/infra/keys/soft"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type keyFlags struct {
	hex  string
	file string
}

func (k *keyFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&k.hex, "key-hex", "", "secp256k1 private key hex")
	fs.StringVar(&k.file, "key-file", "", "file holding the private key hex")
}

func (k *keyFlags) signer() (*soft.Signer, error) {
	switch {
	case k.hex != "" && k.file != "":
		return nil, errors.New("use only one of --key-hex or --key-file")
	case k.hex != "":
		return soft.NewSignerFromHex(k.hex)
	case k.file != "":
		return soft.NewSignerFromFile(k.file)
	default:
		return nil, errors.New("--key-hex or --key-file is required")
	}
}

func runAddress(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("address", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var keys keyFlags
	keys.register(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	signer, err := keys.signer()
	if err != nil {
		fmt.Fprintf(stderr, "load key: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, signer.Address().Hex())
	return 0
}

type digestOutput struct {
	Kind         string `json:"kind"`
	Layout       string `json:"layout"`
	Packed       string `json:"packed"`
	MsgHash      string `json:"msgHash"`
	PersonalHash string `json:"personalHash"`
}

type signOutput struct {
	MsgHash   string `json:"msgHash"`
	Signature string `json:"signature"`
	Signer    string `json:"signer"`
	Semantics string `json:"semantics"`
}

// parseKindAndQuery reads "<kind> --query ..." with the kind first.
func parseKindAndQuery(name string, args []string, stderr io.Writer, extra func(*flag.FlagSet)) (domain.Claim, bool) {
	if len(args) < 1 {
		fmt.Fprintf(stderr, "%s requires a claim kind\n", name)
		return nil, false
	}
	kind := domain.ClaimKind(args[0])
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var query string
	fs.StringVar(&query, "query", "", "request query string, as sent to the service")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return nil, false
	}
	params, err := url.ParseQuery(query)
	if err != nil {
		fmt.Fprintf(stderr, "parse query: %v\n", err)
		return nil, false
	}
	claim, err := domain.ParseClaim(kind, params)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return nil, false
	}
	return claim, true
}

func runDigest(args []string, stdout, stderr io.Writer) int {
	claim, ok := parseKindAndQuery("digest", args, stderr, nil)
	if !ok {
		return 1
	}
	packed, err := abi.Encoder{}.Encode(claim)
	if err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	digest := crypto.Digest(packed)
	personal, err := crypto.SigningHash(digest, domain.SemanticsPersonal)
	if err != nil {
		fmt.Fprintf(stderr, "hash: %v\n", err)
		return 1
	}
	layout, _ := abi.LayoutFor(claim.Kind())
	if err := writeJSON(stdout, digestOutput{
		Kind:         string(claim.Kind()),
		Layout:       layout.Signature(),
		Packed:       hexutil.Encode(packed),
		MsgHash:      digest.Hex(),
		PersonalHash: personal.Hex(),
	}); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}

func runSign(args []string, stdout, stderr io.Writer) int {
	var (
		keys      keyFlags
		semantics string
	)
	claim, ok := parseKindAndQuery("sign", args, stderr, func(fs *flag.FlagSet) {
		keys.register(fs)
		fs.StringVar(&semantics, "semantics", string(domain.SemanticsPersonal), "raw or personal")
	})
	if !ok {
		return 1
	}
	mode, err := domain.ParseSigningSemantics(semantics)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	signer, err := keys.signer()
	if err != nil {
		fmt.Fprintf(stderr, "load key: %v\n", err)
		return 1
	}
	packed, err := abi.Encoder{}.Encode(claim)
	if err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	digest := crypto.Digest(packed)
	sig, err := signer.Sign(context.Background(), digest, mode)
	if err != nil {
		fmt.Fprintf(stderr, "sign: %v\n", err)
		return 1
	}
	if err := writeJSON(stdout, signOutput{
		MsgHash:   digest.Hex(),
		Signature: hexutil.Encode(sig),
		Signer:    signer.Address().Hex(),
		Semantics: string(mode),
	}); err != nil {
		fmt.Fprintf(stderr, "write output: %v\n", err)
		return 1
	}
	return 0
}
