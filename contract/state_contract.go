package contract

import (
	"fmt"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------
// Contract Configuration State
// -----------------------------------------------------------------------------

// ContractConfig is written once at first start and read back on every restart.
type ContractConfig struct {
	NFTAddress string
	QueueDelay int64 // seconds between queue and earliest execute
}

// loadContractConfig returns nil when the engine has never been initialized on this store.
func loadContractConfig(st *txState) (*ContractConfig, error) {
	ptr, err := st.Get(contractConfigKey())
	if err != nil {
		return nil, err
	}
	if ptr == nil || *ptr == "" {
		return nil, nil
	}
	return decodeContractConfig(*ptr)
}

func saveContractConfig(st *txState, cfg *ContractConfig) error {
	return st.setIfChanged(contractConfigKey(), encodeContractConfig(cfg))
}

// -----------------------------------------------------------------------------
// Contract Config Encoding
// -----------------------------------------------------------------------------

// encodeContractConfig serializes ContractConfig to a pipe-delimited string.
// Format: nftAddress|queueDelay
func encodeContractConfig(cfg *ContractConfig) string {
	return cfg.NFTAddress + "|" + strconv.FormatInt(cfg.QueueDelay, 10)
}

// decodeContractConfig deserializes a pipe-delimited string to ContractConfig.
func decodeContractConfig(data string) (*ContractConfig, error) {
	parts := strings.Split(data, "|")
	if len(parts) != 2 {
		return nil, fmt.Errorf("corrupt contract config %q", data)
	}
	delay, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt contract config delay: %w", err)
	}
	return &ContractConfig{NFTAddress: parts[0], QueueDelay: delay}, nil
}
