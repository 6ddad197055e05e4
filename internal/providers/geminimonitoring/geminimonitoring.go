// Package geminimonitoring implements the Google Cloud Monitoring adapter.
//
// A service account with the monitoring viewer role is exchanged for a
// bearer token, then the Generative Language API request counts are read
// from the serviceruntime metrics, aligned to one-day buckets. The secondary
// net-usage query is best-effort: its failure yields an empty series and
// never fails the fetch.
package geminimonitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/prismhq/prism/internal/core"
	"github.com/prismhq/prism/internal/providers/providerbase"
	"github.com/prismhq/prism/internal/providers/shared"
)

const (
	defaultBaseURL  = "https://monitoring.googleapis.com/v3"
	monitoringScope = "https://www.googleapis.com/auth/monitoring.read"

	requestCountFilter = `metric.type="serviceruntime.googleapis.com/api/request_count" AND ` +
		`resource.labels.service="generativelanguage.googleapis.com"`
	netUsageFilter = `metric.type="serviceruntime.googleapis.com/quota/rate/net_usage" AND ` +
		`resource.labels.service="generativelanguage.googleapis.com"`

	usageNote = "Request counts sourced from Google Cloud Monitoring (serviceruntime API). " +
		"Token-level granularity requires Vertex AI."
)

// flexNumber accepts both the doubleValue float form and the int64Value
// string form Cloud Monitoring uses for point values.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = flexNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("point value is neither number nor string: %s", data)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing point value %q: %w", s, err)
	}
	*n = flexNumber(f)
	return nil
}

type timeSeriesResponse struct {
	TimeSeries []timeSeries `json:"timeSeries"`
}

type timeSeries struct {
	Points []seriesPoint `json:"points"`
}

type seriesPoint struct {
	Interval struct {
		StartTime string `json:"startTime"`
	} `json:"interval"`
	Value struct {
		DoubleValue *flexNumber `json:"doubleValue"`
		Int64Value  *flexNumber `json:"int64Value"`
	} `json:"value"`
}

func (p seriesPoint) number() float64 {
	if p.Value.DoubleValue != nil {
		return float64(*p.Value.DoubleValue)
	}
	if p.Value.Int64Value != nil {
		return float64(*p.Value.Int64Value)
	}
	return 0
}

// TokenFunc exchanges service-account JSON for a bearer token. Injectable so
// tests can bypass the Google token endpoint.
type TokenFunc func(ctx context.Context, serviceAccountJSON []byte) (string, error)

type Adapter struct {
	providerbase.Base

	BaseURL string
	Client  *http.Client
	Token   TokenFunc
	Now     func() time.Time
}

func New() *Adapter {
	return &Adapter{
		Base: providerbase.New(providerbase.Spec{
			ID: core.ProviderGeminiMonitoring,
			Info: core.ProviderInfo{
				Name:    "Gemini Monitoring",
				Company: "Google Cloud",
				DocURL:  "https://cloud.google.com/monitoring/api/v3",
				Fields:  []string{"serviceAccountJson", "projectId"},
			},
		}),
		BaseURL: defaultBaseURL,
		Token:   googleToken,
		Now:     time.Now,
	}
}

func googleToken(ctx context.Context, serviceAccountJSON []byte) (string, error) {
	conf, err := google.JWTConfigFromJSON(serviceAccountJSON, monitoringScope)
	if err != nil {
		return "", fmt.Errorf("parsing service account credentials: %w", err)
	}
	tok, err := conf.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("exchanging service account token: %w", err)
	}
	return tok.AccessToken, nil
}

func (a *Adapter) Fetch(ctx context.Context, cred core.Credential) (core.UsageRecord, error) {
	if cred.ServiceAccountJSON == "" || cred.ProjectID == "" {
		return nil, core.CredentialError("Both serviceAccountJson and projectId are required")
	}
	if !json.Valid([]byte(cred.ServiceAccountJSON)) {
		return nil, core.CredentialError("Invalid service account JSON")
	}

	token, err := a.Token(ctx, []byte(cred.ServiceAccountJSON))
	if err != nil {
		return nil, core.NetworkError("Failed to obtain access token", err)
	}

	start, end := core.ReportWindow(a.Now())

	requests, err := a.queryTimeSeries(ctx, token, cred.ProjectID, requestCountFilter, start, end, true)
	if err != nil {
		return nil, err
	}

	// Secondary token-usage query is best-effort; an empty series stands in
	// for a failure.
	_, _ = a.queryTimeSeries(ctx, token, cred.ProjectID, netUsageFilter, start, end, false)

	record := Normalize(requests)
	record.ProjectID = cred.ProjectID
	record.Note = usageNote
	return record, nil
}

func (a *Adapter) queryTimeSeries(ctx context.Context, token, projectID, filter string, start, end time.Time, reduce bool) (timeSeriesResponse, error) {
	query := url.Values{}
	query.Set("filter", filter)
	query.Set("interval.startTime", start.Format(time.RFC3339))
	query.Set("interval.endTime", end.Format(time.RFC3339))
	query.Set("aggregation.alignmentPeriod", "86400s")
	query.Set("aggregation.perSeriesAligner", "ALIGN_RATE")
	if reduce {
		query.Set("aggregation.crossSeriesReducer", "REDUCE_SUM")
		query.Set("aggregation.groupByFields", "metric.labels.method")
	}

	endpoint := fmt.Sprintf("%s/projects/%s/timeSeries?%s", a.BaseURL, projectID, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return timeSeriesResponse{}, fmt.Errorf("geminimonitoring: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, ferr := shared.Do(a.Client, req, "Cloud Monitoring")
	if ferr != nil {
		return timeSeriesResponse{}, ferr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return timeSeriesResponse{}, shared.UpstreamFromResponse(resp, "Cloud Monitoring")
	}

	var series timeSeriesResponse
	if err := shared.DecodeBody(resp, &series); err != nil {
		return timeSeriesResponse{}, fmt.Errorf("geminimonitoring: %w", err)
	}
	return series, nil
}

// Normalize buckets every point by the date portion of its interval start,
// summing across series. Per-day values round for display; the total rounds
// once over the raw sum, never per bucket.
func Normalize(resp timeSeriesResponse) core.GeminiMonitoringUsage {
	dailyRaw := map[string]float64{}
	total := 0.0

	for _, series := range resp.TimeSeries {
		for _, point := range series.Points {
			date := core.DateOf(point.Interval.StartTime)
			value := point.number()
			dailyRaw[date] += value
			total += value
		}
	}

	trend := make([]core.DayRequests, 0, len(dailyRaw))
	for date, requests := range dailyRaw {
		trend = append(trend, core.DayRequests{
			Date:     date,
			Requests: int64(math.Round(requests)),
		})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })

	return core.GeminiMonitoringUsage{
		TotalRequests: int64(math.Round(total)),
		DailyTrend:    trend,
	}
}
