package metrics

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"

	"github.com/BlockCoop-Sacco/block-coop-sacco/internal/registry"
)

// call executes a read-only method against a bound contract at the
// latest block.
func (s *Service) call(ctx context.Context, binding registry.Binding, method string, args ...interface{}) ([]interface{}, error) {
	input, err := binding.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s.%s: %w", binding.Name, method, err)
	}

	output, err := s.caller.CallContract(ctx, ethereum.CallMsg{To: &binding.Address, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s.%s: %w", binding.Name, method, err)
	}

	values, err := binding.ABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("decode %s.%s: %w", binding.Name, method, err)
	}
	return values, nil
}
