package builtin

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/harunnryd/ragent/internal/config"
	"github.com/harunnryd/ragent/internal/model/contract"
	toolcore "github.com/harunnryd/ragent/internal/tool"
)

type ipapiResponse struct {
	City        string  `json:"city"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	CountryName string  `json:"country_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Error       bool    `json:"error"`
	Reason      string  `json:"reason"`
}

type locationResult struct {
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func init() {
	toolcore.RegisterBuiltin("getLocation", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		endpoint := strings.TrimSpace(options.LocationBaseURL)
		if endpoint == "" {
			endpoint = config.DefaultLocationToolBaseURL
		}

		return NewLocationTool(&LocationService{
			Client:   newHTTPClient(options.LocationTimeout, toolcore.DefaultBuiltinHTTPTimeout),
			Endpoint: endpoint,
		}), nil
	})
}

// LocationService geolocates the caller's public IP through an ipapi.co style endpoint.
type LocationService struct {
	Client   *http.Client
	Endpoint string
}

func NewLocationTool(svc *LocationService) toolcore.Tool {
	decl := contract.ToolDef{
		Name:        "getLocation",
		Description: "Get the user's current location",
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}

	return toolcore.WithMetadata(toolcore.New(decl, svc.handle), toolcore.ToolMetadata{
		Source:       "builtin",
		Capabilities: []string{"location.query", "http.get"},
		Risk:         toolcore.RiskMedium,
	})
}

func (s *LocationService) handle(ctx context.Context, _ toolcore.NoArgs) (string, error) {
	result, err := s.Locate(ctx)
	if err != nil {
		return "", err
	}
	return toolcore.JSON(result)
}

func (s *LocationService) Locate(ctx context.Context) (*locationResult, error) {
	var payload ipapiResponse
	if err := getJSON(ctx, s.Client, s.Endpoint, &payload); err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}
	if payload.Error {
		return nil, fmt.Errorf("location lookup failed: %s", payload.Reason)
	}

	country := strings.TrimSpace(payload.CountryName)
	if country == "" {
		country = strings.TrimSpace(payload.Country)
	}

	return &locationResult{
		City:      strings.TrimSpace(payload.City),
		Region:    strings.TrimSpace(payload.Region),
		Country:   country,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	}, nil
}
