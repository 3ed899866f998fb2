package main

import (
	"flag"
	"fmt"
	"io"

	"revix/internal/domain"
	"revix/internal/infra/crypto"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

func runVerify(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var digestHex, sigHex, addressHex, semantics string
	fs.StringVar(&digestHex, "digest", "", "msgHash returned by the service")
	fs.StringVar(&sigHex, "signature", "", "signature returned by the service")
	fs.StringVar(&addressHex, "address", "", "expected signer address")
	fs.StringVar(&semantics, "semantics", string(domain.SemanticsPersonal), "raw or personal")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if digestHex == "" || sigHex == "" || addressHex == "" {
		fmt.Fprintln(stderr, "verify requires --digest, --signature and --address")
		return 1
	}

	digest, err := domain.ParseHash32("digest", digestHex)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		fmt.Fprintf(stderr, "decode signature: %v\n", err)
		return 1
	}
	expected, err := domain.ParseAddress("address", addressHex)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	mode, err := domain.ParseSigningSemantics(semantics)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	recovered, err := crypto.RecoverSigner(digest, sig, mode)
	if err != nil {
		fmt.Fprintf(stderr, "recover signer: %v\n", err)
		return 1
	}
	if recovered != expected {
		fmt.Fprintf(stderr, "signature mismatch: recovered %s\n", recovered.Hex())
		return 2
	}
	fmt.Fprintf(stdout, "ok %s\n", recovered.Hex())
	return 0
}
