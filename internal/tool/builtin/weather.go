package builtin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/harunnryd/ragent/internal/config"
	"github.com/harunnryd/ragent/internal/model/contract"
	toolcore "github.com/harunnryd/ragent/internal/tool"
)

const (
	unitFahrenheit = "fahrenheit"
	unitCelsius    = "celsius"
)

type weatherArgs struct {
	Location string `json:"location"`
}

type weatherResult struct {
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Unit        string `json:"unit"`
	Forecast    string `json:"forecast"`
}

type wttrNamedValue struct {
	Value string `json:"value"`
}

type wttrCurrentCondition struct {
	TempC       string           `json:"temp_C"`
	TempF       string           `json:"temp_F"`
	WeatherDesc []wttrNamedValue `json:"weatherDesc"`
}

type wttrNearestArea struct {
	AreaName []wttrNamedValue `json:"areaName"`
	Region   []wttrNamedValue `json:"region"`
	Country  []wttrNamedValue `json:"country"`
}

type wttrResponse struct {
	CurrentCondition []wttrCurrentCondition `json:"current_condition"`
	NearestArea      []wttrNearestArea      `json:"nearest_area"`
}

func init() {
	toolcore.RegisterBuiltin("getCurrentWeather", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		baseURL := strings.TrimSpace(options.WeatherBaseURL)
		if baseURL == "" {
			baseURL = config.DefaultWeatherToolBaseURL
		}

		units := strings.ToLower(strings.TrimSpace(options.WeatherUnits))
		switch units {
		case "":
			units = unitFahrenheit
		case unitFahrenheit, unitCelsius:
		default:
			return nil, fmt.Errorf("unsupported weather units %q", options.WeatherUnits)
		}

		return NewWeatherTool(&WeatherService{
			Client:  newHTTPClient(options.WeatherTimeout, toolcore.DefaultBuiltinHTTPTimeout),
			BaseURL: baseURL,
			Units:   units,
		}), nil
	})
}

// WeatherService reads current conditions from a wttr.in compatible endpoint.
type WeatherService struct {
	Client  *http.Client
	BaseURL string
	Units   string
}

func NewWeatherTool(svc *WeatherService) toolcore.Tool {
	decl := contract.ToolDef{
		Name:        "getCurrentWeather",
		Description: "Get the current weather",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"location": map[string]interface{}{
					"type":        "string",
					"description": "The city and state, e.g. San Francisco, CA",
				},
			},
			"required": []string{"location"},
		},
	}

	return toolcore.WithMetadata(toolcore.New(decl, svc.handle), toolcore.ToolMetadata{
		Source:       "builtin",
		Capabilities: []string{"weather.query", "http.get"},
		Risk:         toolcore.RiskLow,
	})
}

func (s *WeatherService) handle(ctx context.Context, args weatherArgs) (string, error) {
	result, err := s.Current(ctx, args.Location)
	if err != nil {
		return "", err
	}
	return toolcore.JSON(result)
}

func (s *WeatherService) Current(ctx context.Context, location string) (*weatherResult, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}

	endpoint, err := weatherEndpoint(s.BaseURL, location)
	if err != nil {
		return nil, err
	}

	var payload wttrResponse
	if err := getJSON(ctx, s.Client, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	if len(payload.CurrentCondition) == 0 {
		return nil, fmt.Errorf("weather response missing current condition")
	}

	current := payload.CurrentCondition[0]
	temperature := current.TempF
	if s.Units == unitCelsius {
		temperature = current.TempC
	}

	return &weatherResult{
		Location:    resolveWeatherLocation(payload.NearestArea, location),
		Temperature: strings.TrimSpace(temperature),
		Unit:        s.Units,
		Forecast:    strings.ToLower(firstNamedValue(current.WeatherDesc)),
	}, nil
}

func weatherEndpoint(baseURL string, location string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("invalid weather endpoint: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid weather endpoint %q", baseURL)
	}

	rawPrefix := strings.TrimSuffix(parsed.EscapedPath(), "/")
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/" + location
	parsed.RawPath = rawPrefix + "/" + url.PathEscape(location)
	q := parsed.Query()
	q.Set("format", "j1")
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}

func resolveWeatherLocation(nearest []wttrNearestArea, fallback string) string {
	if len(nearest) == 0 {
		return fallback
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{
		firstNamedValue(nearest[0].AreaName),
		firstNamedValue(nearest[0].Region),
		firstNamedValue(nearest[0].Country),
	} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}

func firstNamedValue(values []wttrNamedValue) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}
