package gaze

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoEnvironment indicates the IDE tracking file has no <environment> element.
var ErrNoEnvironment = errors.New("no <environment> in IDE tracking data")

var errScreenSize = errors.New("invalid screen_size")

const (
	elemEnvironment = "environment"
	defaultIDEName  = "IDE"
	defaultScale    = 1.0
)

// Environment describes the screen and IDE a recording was made in, so that
// normalized gaze coordinates can be mapped to pixels.
type Environment struct {
	ScreenWidth  int     `json:"screen_width"           yaml:"screen_width"`
	ScreenHeight int     `json:"screen_height"          yaml:"screen_height"`
	ScaleX       float64 `json:"scale_x"                yaml:"scale_x"`
	ScaleY       float64 `json:"scale_y"                yaml:"scale_y"`
	IDEName      string  `json:"ide_name"               yaml:"ide_name"`
	ProjectPath  string  `json:"project_path,omitempty" yaml:"project_path,omitempty"`
}

type rawEnvironment struct {
	ScreenSize  string `xml:"screen_size,attr"`
	ScreenW     string `xml:"screen_w,attr"`
	ScreenH     string `xml:"screen_h,attr"`
	ScaleX      string `xml:"scale_x,attr"`
	ScaleY      string `xml:"scale_y,attr"`
	IDEName     string `xml:"ide_name,attr"`
	ProjectPath string `xml:"project_path,attr"`
}

// ParseEnvironment reads the first <environment> element of an IDE tracking file.
func ParseEnvironment(r io.Reader) (Environment, error) {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return Environment{}, ErrNoEnvironment
		}

		if err != nil {
			return Environment{}, fmt.Errorf("%w: %w", ErrMalformedTelemetry, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != elemEnvironment {
			continue
		}

		var raw rawEnvironment

		decodeErr := dec.DecodeElement(&raw, &start)
		if decodeErr != nil {
			return Environment{}, fmt.Errorf("%w: %w", ErrMalformedTelemetry, decodeErr)
		}

		return raw.resolve()
	}
}

func (raw rawEnvironment) resolve() (Environment, error) {
	env := Environment{
		IDEName:     raw.IDEName,
		ProjectPath: raw.ProjectPath,
	}

	if env.IDEName == "" {
		env.IDEName = defaultIDEName
	}

	var err error

	if strings.HasPrefix(raw.ScreenSize, "(") {
		env.ScreenWidth, env.ScreenHeight, err = parseScreenSize(raw.ScreenSize)
	} else {
		env.ScreenWidth, err = atoiOrZero(raw.ScreenW)
		if err == nil {
			env.ScreenHeight, err = atoiOrZero(raw.ScreenH)
		}
	}

	if err != nil {
		return Environment{}, fmt.Errorf("screen size: %w", err)
	}

	env.ScaleX, err = floatOrDefault(raw.ScaleX, defaultScale)
	if err != nil {
		return Environment{}, fmt.Errorf("scale_x: %w", err)
	}

	env.ScaleY, err = floatOrDefault(raw.ScaleY, defaultScale)
	if err != nil {
		return Environment{}, fmt.Errorf("scale_y: %w", err)
	}

	return env, nil
}

// parseScreenSize parses "(w,h)".
func parseScreenSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.Trim(s, "()"), ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w %q", errScreenSize, s)
	}

	w, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid screen width: %w", err)
	}

	h, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid screen height: %w", err)
	}

	return w, h, nil
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse int: %w", err)
	}

	return v, nil
}

func floatOrDefault(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}

	return v, nil
}
