package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	apperrors "github.com/somos/attraction/backend/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.opentelemetry.io/otel/attribute"
)

// Client talks to an OpenTripPlanner GraphQL endpoint. Every call is a
// single POST; nothing is retried or cached.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *observability.Metrics
	documents  map[string]*document
}

type document struct {
	query     string
	variables map[string]struct{}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// NewClient creates a planner client. The fixed query documents are parsed
// up front so a malformed document fails at startup rather than per request.
func NewClient(endpoint string, timeout time.Duration, metrics *observability.Metrics) (*Client, error) {
	documents := make(map[string]*document, 3)
	for name, query := range map[string]string{
		operationStops:     stopsQuery,
		operationPlan:      planQuery,
		operationStopTimes: stopTimesQuery,
	} {
		doc, err := parseDocument(name, query)
		if err != nil {
			return nil, err
		}
		documents[name] = doc
	}

	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics:   metrics,
		documents: documents,
	}, nil
}

var _ providers.TripPlanner = (*Client)(nil)

func parseDocument(name, query string) (*document, error) {
	parsed, err := parser.ParseQuery(&ast.Source{Name: name, Input: query})
	if err != nil {
		return nil, fmt.Errorf("invalid %s query document: %w", name, err)
	}
	if len(parsed.Operations) != 1 {
		return nil, fmt.Errorf("%s query document must hold exactly one operation, got %d", name, len(parsed.Operations))
	}

	vars := make(map[string]struct{})
	for _, def := range parsed.Operations[0].VariableDefinitions {
		vars[def.Variable] = struct{}{}
	}
	return &document{query: query, variables: vars}, nil
}

// FetchStops returns the planner's full stop directory
func (c *Client) FetchStops(ctx context.Context) ([]entities.Stop, error) {
	var data struct {
		Stops []entities.Stop `json:"stops"`
	}
	if err := c.execute(ctx, operationStops, nil, &data); err != nil {
		return nil, err
	}
	return data.Stops, nil
}

// PlanTrip returns itineraries between two points in planner order
func (c *Client) PlanTrip(ctx context.Context, query providers.PlanQuery) ([]entities.Itinerary, error) {
	variables := map[string]interface{}{
		"fromLat": query.FromLat,
		"fromLon": query.FromLon,
		"toLat":   query.ToLat,
		"toLon":   query.ToLon,
		"date":    query.Date,
		"time":    query.Time,
	}

	var data struct {
		Plan *struct {
			Itineraries []entities.Itinerary `json:"itineraries"`
		} `json:"plan"`
	}
	if err := c.execute(ctx, operationPlan, variables, &data); err != nil {
		return nil, err
	}
	if data.Plan == nil {
		return []entities.Itinerary{}, nil
	}
	return data.Plan.Itineraries, nil
}

type stopTimesPayload struct {
	Stop *struct {
		Name      string `json:"name"`
		StopTimes []struct {
			ScheduledArrival   int  `json:"scheduledArrival"`
			RealtimeArrival    *int `json:"realtimeArrival"`
			ScheduledDeparture int  `json:"scheduledDeparture"`
			RealtimeDeparture  int  `json:"realtimeDeparture"`
			Trip               struct {
				Route struct {
					ShortName string `json:"shortName"`
					LongName  string `json:"longName"`
				} `json:"route"`
			} `json:"trip"`
		} `json:"stoptimesWithoutPatterns"`
	} `json:"stop"`
}

// FetchStopTimes returns the next departures of a stop, or nil if the
// planner does not know the stop.
func (c *Client) FetchStopTimes(ctx context.Context, stopID string) (*entities.StopTimes, error) {
	var data stopTimesPayload
	if err := c.execute(ctx, operationStopTimes, map[string]interface{}{"stopId": stopID}, &data); err != nil {
		return nil, err
	}
	if data.Stop == nil {
		return nil, nil
	}

	out := &entities.StopTimes{
		Name:  data.Stop.Name,
		Times: make([]entities.StopTime, 0, len(data.Stop.StopTimes)),
	}
	for _, st := range data.Stop.StopTimes {
		out.Times = append(out.Times, entities.StopTime{
			ScheduledArrival:   st.ScheduledArrival,
			RealtimeArrival:    st.RealtimeArrival,
			ScheduledDeparture: st.ScheduledDeparture,
			RealtimeDeparture:  st.RealtimeDeparture,
			RouteShortName:     st.Trip.Route.ShortName,
			RouteLongName:      st.Trip.Route.LongName,
		})
	}
	return out, nil
}

func (c *Client) execute(ctx context.Context, operation string, variables map[string]interface{}, out interface{}) (err error) {
	ctx, span := observability.StartSpan(ctx, "otp."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("planner.operation", operation))

	start := time.Now()
	defer func() {
		observability.RecordPlannerCall(ctx, c.metrics, operation, time.Since(start), err)
		observability.RecordError(span, err)
		if err != nil {
			observability.ComponentLogger(ctx, "otp").Warn().
				Err(err).
				Str("operation", operation).
				Msg("trip planner call failed")
		}
	}()

	doc, ok := c.documents[operation]
	if !ok {
		return apperrors.NewInternalError("unknown planner operation "+operation, nil)
	}
	for name := range variables {
		if _, declared := doc.variables[name]; !declared {
			return apperrors.NewInternalError(fmt.Sprintf("variable %q is not declared by the %s query", name, operation), nil)
		}
	}

	body, err := json.Marshal(graphQLRequest{Query: doc.query, Variables: variables})
	if err != nil {
		return apperrors.NewInternalError("failed to encode planner request", err)
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return unavailable(operation, err)
	}

	if hasErrors(resp.Errors) {
		return apperrors.NewBadUpstreamError("trip planner returned errors for "+operation, resp.Errors)
	}
	if len(resp.Data) == 0 || bytes.Equal(resp.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return unavailable(operation, fmt.Errorf("decode response data: %w", err))
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (*graphQLResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), c.endpoint)
	}

	out := &graphQLResponse{}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func hasErrors(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func unavailable(operation string, err error) error {
	return apperrors.NewServiceUnavailableError(fmt.Sprintf("Failed to fetch %s: %v", operation, err), err)
}
