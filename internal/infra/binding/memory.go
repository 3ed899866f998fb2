package binding

import (
	"context"
	"fmt"
	"strings"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// Memory is a fixed registry loaded from configuration.
type Memory struct {
	bindings map[string][]common.Address
}

func NewMemory(bindings map[string][]common.Address) *Memory {
	cp := make(map[string][]common.Address, len(bindings))
	for account, addrs := range bindings {
		cp[account] = append([]common.Address(nil), addrs...)
	}
	return &Memory{bindings: cp}
}

// ParseBindings reads "account=0xaddr,0xaddr;account2=0xaddr".
func ParseBindings(raw string) (map[string][]common.Address, error) {
	out := make(map[string][]common.Address)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		account, list, ok := strings.Cut(entry, "=")
		account = strings.TrimSpace(account)
		if !ok || account == "" {
			return nil, fmt.Errorf("binding %q: expected account=addresses", entry)
		}
		for _, item := range strings.Split(list, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			addr, err := domain.ParseAddress("bindings", item)
			if err != nil {
				return nil, fmt.Errorf("binding for %s: %w", account, err)
			}
			out[account] = append(out[account], addr)
		}
	}
	return out, nil
}

func (m *Memory) BoundAddresses(_ context.Context, externalAccountID string) ([]common.Address, error) {
	return append([]common.Address(nil), m.bindings[externalAccountID]...), nil
}
