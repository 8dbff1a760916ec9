package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Trade is one fill record from the data API. The upstream service returns
// untyped JSON and is inconsistent about numbers vs. numeric strings, so the
// numeric fields decode through Number/UnixTime.
type Trade struct {
	ProxyWallet          string   `json:"proxyWallet"`
	ConditionID          string   `json:"conditionId"`
	Side                 string   `json:"side"`
	Price                Number   `json:"price"`
	Size                 Number   `json:"size"`
	USDCSize             Number   `json:"usdcSize"`
	Timestamp            UnixTime `json:"timestamp"`
	TransactionTimestamp UnixTime `json:"transactionTimestamp"`
	Name                 string   `json:"name"`
	Pseudonym            string   `json:"pseudonym"`
}

// Time returns the best available trade timestamp in unix seconds, or 0 when
// neither field carried a usable value.
func (t Trade) Time() int64 {
	if t.Timestamp > 0 {
		return int64(t.Timestamp)
	}
	return int64(t.TransactionTimestamp)
}

// Position is one market exposure record from the data API.
type Position struct {
	ConditionID string `json:"conditionId"`
	CashPnL     Number `json:"cashPnl"`
	Size        Number `json:"size"`
}

// Number is a float64 that also accepts quoted numbers and null. Malformed
// values decode to 0 rather than failing the whole payload.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = Number(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*n = Number(v)
	}
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// UnixTime is a unix-seconds timestamp that accepts numbers, quoted numbers,
// and null. Anything unparseable decodes to 0 and is skipped downstream.
type UnixTime int64

func (u *UnixTime) UnmarshalJSON(data []byte) error {
	var n Number
	_ = n.UnmarshalJSON(data)
	*u = UnixTime(int64(n))
	return nil
}
