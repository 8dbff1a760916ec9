// Package hashutil computes content hashes for archived trader records.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

// Summary returns a SHA256 hex digest over the fields that define a trader
// snapshot, so unchanged records can be spotted across archive runs.
func Summary(s models.TraderSummary) string {
	h := sha256.New()
	write := func(p string) {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	write(s.Address)
	write(s.Username)
	write(strconv.FormatFloat(s.PnL, 'f', -1, 64))
	write(strconv.FormatFloat(s.Volume, 'f', -1, 64))
	write(strconv.Itoa(s.Trades))
	write(strconv.FormatFloat(s.WinRate, 'f', -1, 64))
	return hex.EncodeToString(h.Sum(nil))
}
