// Package drivers holds the civilian driver records assigned to traffic cars,
// the pool that hands them out, and the client that fetches them.
package drivers

import "fmt"

// Driver is a licensed driver record. JSON keys follow the driver service.
type Driver struct {
	Plate string `json:"placa" yaml:"placa"`
	Class string `json:"clase" yaml:"clase"`
	Brand string `json:"marca" yaml:"marca"`
	Model string `json:"modelo" yaml:"modelo"`
	Owner string `json:"dueño" yaml:"dueño"`
	Level int    `json:"nivel de conduccion" yaml:"nivel de conduccion"` // 0-99
}

// Level bands.
const (
	ExcellentLevel = 75
	AverageLevel   = 50
)

// LevelColor returns the display colour for a driving level.
func LevelColor(level int) string {
	switch {
	case level >= ExcellentLevel:
		return "#00ff00"
	case level >= AverageLevel:
		return "#ffff00"
	default:
		return "#ff0000"
	}
}

// LevelName returns the display label for a driving level.
func LevelName(level int) string {
	switch {
	case level >= ExcellentLevel:
		return "Excellent"
	case level >= AverageLevel:
		return "Average"
	default:
		return "Poor"
	}
}

func (d Driver) String() string {
	return fmt.Sprintf("%s (%s, level %d)", d.Plate, d.Owner, d.Level)
}
