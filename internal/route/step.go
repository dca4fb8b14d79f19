// Package route converts routing-service step records into the 3D waypoint
// segments the vehicle follows, and tracks progress along them.
package route

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Instruction values emitted by the routing service.
const (
	InstructionStart    = "Inicio"
	InstructionContinue = "Continuar por"
	InstructionArrive   = "Destino"
)

// Oneway flag values emitted by the routing service.
const (
	OnewayYes = "Sí"
	OnewayNo  = "No"
)

// Step is one leg of a calculated route as returned by the routing service.
// Field names follow the service's wire format.
type Step struct {
	Index          int             `json:"paso"`
	From           string          `json:"desde"`
	To             string          `json:"hasta"`
	StreetName     string          `json:"nombreCalle"`
	RoadType       string          `json:"tipoCalle"`
	Oneway         string          `json:"unidireccional"`
	DistanceMeters float64         `json:"distancia_metros"`
	StraightToDest float64         `json:"distanciaLineaRectaAlDestino"`
	MaxSpeed       SpeedLimit      `json:"velocidadMaxima_kmh"`
	Instruction    string          `json:"instruccion"`
	TotalDistance  *float64        `json:"distanciaTotal"`
	FromLat        float64         `json:"fromLat"`
	FromLng        float64         `json:"fromLng"`
	ToLat          float64         `json:"toLat"`
	ToLng          float64         `json:"toLng"`
	OSMID          json.RawMessage `json:"OSMID,omitempty"`
}

// IsOneway reports whether the step's street is one-way.
func (s Step) IsOneway() bool { return s.Oneway == OnewayYes }

// SpeedLimit is a lenient km/h value. The service emits numbers, numeric
// strings, lists of either, or null; lists and anything unparseable are
// treated as unset.
type SpeedLimit struct {
	Kmh   float64
	Valid bool
}

// Limit returns a valid SpeedLimit.
func Limit(kmh float64) SpeedLimit { return SpeedLimit{Kmh: kmh, Valid: true} }

// Or returns the limit, or fallback when unset or non-positive.
func (s SpeedLimit) Or(fallback float64) float64 {
	if !s.Valid || s.Kmh <= 0 {
		return fallback
	}
	return s.Kmh
}

func (s *SpeedLimit) UnmarshalJSON(data []byte) error {
	*s = SpeedLimit{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// Lists come from edges merged over several ways with different limits;
	// none of them applies to the whole step, so the limit stays unset.
	if _, ok := raw.([]any); ok {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		*s = Limit(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*s = Limit(f)
		}
	}
	return nil
}

func (s SpeedLimit) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Kmh)
}
