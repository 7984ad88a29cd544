package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// queryBlock parses an optional block-number query parameter. Zero
// means unset.
func queryBlock(r *http.Request, key string) (uint64, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, nil
	}
	number, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return number, nil
}

// queryRange parses the optional from/to block bounds.
func queryRange(r *http.Request) (uint64, uint64, error) {
	from, err := queryBlock(r, "from")
	if err != nil {
		return 0, 0, err
	}
	to, err := queryBlock(r, "to")
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

// queryAddresses parses a comma-separated address list parameter.
func queryAddresses(r *http.Request, key string) ([]common.Address, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	out := make([]common.Address, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !common.IsHexAddress(part) {
			return nil, fmt.Errorf("invalid address: %q", part)
		}
		out = append(out, common.HexToAddress(part))
	}
	return out, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := s.reports.NetworkInfo(r.Context())
	status := http.StatusOK
	health := "healthy"
	if !info.Connected {
		status = http.StatusServiceUnavailable
		health = "unhealthy"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":    health,
		"network":   info,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.ComprehensiveStats(r.Context()))
}

func (s *Server) handleLiquidity(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.reports.LiquidityStats(r.Context(), from, to))
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.reports.ReportsSummary(r.Context(), from, to))
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	packages, err := s.metrics.Packages(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, packages)
}

func (s *Server) handlePackageSales(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.metrics.PackageSalesReport(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var holder common.Address
	if value := r.URL.Query().Get("holder"); value != "" {
		if !common.IsHexAddress(value) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid holder: %q", value))
			return
		}
		holder = common.HexToAddress(value)
	}
	report, err := s.metrics.TransferReport(r.Context(), from, to, holder)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGas(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	wallets, err := queryAddresses(r, "wallets")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(wallets) == 0 {
		for _, raw := range s.cfg.GasWallets {
			if common.IsHexAddress(raw) {
				wallets = append(wallets, common.HexToAddress(raw))
			}
		}
	}
	if len(wallets) == 0 {
		writeError(w, http.StatusBadRequest, "no wallets configured or provided")
		return
	}
	report, err := s.metrics.GasSpendReport(r.Context(), from, to, wallets)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleVesting(w http.ResponseWriter, r *http.Request) {
	wallets, err := queryAddresses(r, "wallets")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(wallets) == 0 {
		writeError(w, http.StatusBadRequest, "wallets parameter required")
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.VestingPositions(r.Context(), wallets))
}
