package tools

import (
	"context"
	"fmt"

	"github.com/friscolabs/frisco-mcp/pkg/protocol"
	"github.com/friscolabs/frisco-mcp/pkg/weather"
)

func weatherTool(client *weather.Client) (protocol.Tool, Handler) {
	tool := protocol.Tool{
		Name: "weather",
		Description: fmt.Sprintf("Get current weather for a city (defaults to %s)",
			weather.DefaultCity),
		InputSchema: StringSchema(map[string]string{
			"city": "City name (e.g. 'Las Vegas' or 'Denver')",
		}),
	}
	handler := func(ctx context.Context, args map[string]interface{}) (string, error) {
		city, _ := args["city"].(string)

		// The one blocking call in the whole pipeline, bounded by the
		// client's timeout on top of the executor's context.
		report, err := client.Current(ctx, city)
		if err != nil {
			return "", err
		}
		return formatReport(report), nil
	}
	return tool, handler
}

func formatReport(r *weather.Report) string {
	return fmt.Sprintf(
		"Weather for %s:\nTemperature: %s°F (%s°C)\nCondition: %s\nWind: %s mph\nHumidity: %s%%\nVisibility: %s miles",
		r.City, r.TempF, r.TempC, r.Condition, r.WindMph, r.Humidity, r.VisibilityMiles)
}
