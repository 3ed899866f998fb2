package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
)

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		usage(args, stderr)
		return 1
	}

	switch args[1] {
	case "address":
		return runAddress(args[2:], stdout, stderr)
	case "digest":
		return runDigest(args[2:], stdout, stderr)
	case "sign":
		return runSign(args[2:], stdout, stderr)
	case "verify":
		return runVerify(args[2:], stdout, stderr)
	case "binding":
		if len(args) >= 3 {
			switch args[2] {
			case "add":
				return runBindingAdd(args[3:], stdout, stderr)
			case "remove":
				return runBindingRemove(args[3:], stdout, stderr)
			}
		}
	}

	usage(args, stderr)
	return 1
}

func usage(args []string, w io.Writer) {
	name := "revix"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(w, "usage:\n")
	fmt.Fprintf(w, "  %s address (--key-hex <hex>|--key-file <file>)\n", name)
	fmt.Fprintf(w, "  %s digest <account_ownership|content_ownership|royalty_transfer> --query <url query>\n", name)
	fmt.Fprintf(w, "  %s sign <kind> --query <url query> (--key-hex <hex>|--key-file <file>) [--semantics raw|personal]\n", name)
	fmt.Fprintf(w, "  %s verify --digest <0x hash> --signature <0x sig> --address <0x addr> [--semantics raw|personal]\n", name)
	fmt.Fprintf(w, "  %s binding (add|remove) --account <external account id> --address <0x addr> [--provider <name>]\n", name)
}

func writeJSON(w io.Writer, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}
