package config

import (
	"fmt"
	"strconv"
	"strings"

	"stilch/internal/geom"
)

// applyOutput parses `output NAME [scale S] [transform T] [position X,Y]
// [physical_size WxHmm] [physical_position X,Ymm]` (§6). Options may
// appear in any order and any subset may be present; OutputConfig's
// Has* flags record which were actually set so the caller only overrides
// what the config mentions.
func (cfg *Config) applyOutput(tokens []string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("output requires a name")
	}
	oc := &OutputConfig{Name: tokens[0]}
	rest := tokens[1:]
	for len(rest) > 0 {
		key := rest[0]
		if len(rest) < 2 {
			return fmt.Errorf("output %s: %q requires a value", oc.Name, key)
		}
		val := rest[1]
		rest = rest[2:]
		switch key {
		case "scale":
			s, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("output %s: invalid scale %q: %w", oc.Name, val, err)
			}
			oc.Scale, oc.HasScale = s, true
		case "transform":
			t, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("output %s: invalid transform %q: %w", oc.Name, val, err)
			}
			oc.Transform, oc.HasTransform = t, true
		case "position":
			x, y, err := parsePair(val)
			if err != nil {
				return fmt.Errorf("output %s: invalid position %q: %w", oc.Name, val, err)
			}
			oc.Position, oc.HasPosition = geom.Vec2[int32]{X: int32(x), Y: int32(y)}, true
		case "physical_size":
			w, h, err := parseSizeMM(val)
			if err != nil {
				return fmt.Errorf("output %s: invalid physical_size %q: %w", oc.Name, val, err)
			}
			oc.PhysicalSizeMM, oc.HasPhysicalSize = geom.Vec2[float64]{X: w, Y: h}, true
		case "physical_position":
			x, y, err := parsePair(val)
			if err != nil {
				return fmt.Errorf("output %s: invalid physical_position %q: %w", oc.Name, val, err)
			}
			oc.PhysicalPositionMM, oc.HasPhysicalPosition = geom.Vec2[float64]{X: float64(x), Y: float64(y)}, true
		default:
			return fmt.Errorf("output %s: unrecognised option %q", oc.Name, key)
		}
	}
	cfg.Outputs[oc.Name] = oc
	return nil
}

// applyVirtualOutput parses `virtual_output NAME outputs P[,P…] region
// X,Y,W,H` (§6).
func (cfg *Config) applyVirtualOutput(tokens []string) error {
	if len(tokens) < 5 || tokens[1] != "outputs" || tokens[3] != "region" {
		return fmt.Errorf("virtual_output requires NAME outputs P[,P...] region X,Y,W,H")
	}
	names := strings.Split(tokens[2], ",")
	region, err := parseRegion(tokens[4])
	if err != nil {
		return fmt.Errorf("virtual_output %s: invalid region %q: %w", tokens[0], tokens[4], err)
	}
	vo := VirtualOutputConfig{
		Name:         tokens[0],
		PhysicalName: names[0],
		Region:       region,
	}
	if len(names) > 1 {
		vo.ExtraOutputs = names[1:]
	}
	cfg.VirtualOutputs = append(cfg.VirtualOutputs, vo)
	return nil
}

func parsePair(s string) (int64, int64, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected X,Y")
	}
	x, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func parseSizeMM(s string) (float64, float64, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WxH")
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, err
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func parseRegion(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, fmt.Errorf("expected X,Y,W,H")
	}
	var vals [4]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return geom.Rect{}, err
		}
		vals[i] = n
	}
	return geom.Rect{X: int32(vals[0]), Y: int32(vals[1]), W: int32(vals[2]), H: int32(vals[3])}, nil
}
