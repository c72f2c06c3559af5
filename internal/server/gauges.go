package server

import (
	"context"

	"github.com/muurk/blauberg/internal/devices"
	"github.com/muurk/blauberg/internal/protocol"
)

// readGauges reads ids in one exchange and keeps the values that fit a
// gauge: known and at most eight bytes wide. Keys are parameter ids in hex.
func readGauges(ctx context.Context, fan devices.Reader, ids []protocol.ParamID) (map[string]float64, error) {
	params, err := fan.ReadParams(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(params))
	for id, v := range params {
		if !v.IsKnown() || v.Len() > 8 {
			continue
		}
		out[id.String()] = float64(v.Uint())
	}
	return out, nil
}
