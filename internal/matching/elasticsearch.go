// internal/matching/elasticsearch.go
package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"talent-matching-workers/internal/common/logger"
	"talent-matching-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/spf13/cast"
)

const (
	DefaultCandidateIndex = "freelancers"
	defaultSearchSize     = 1000
)

// ElasticsearchCandidateStore reads denormalized candidate documents. The
// query is a structured filter only; no text relevance is involved.
type ElasticsearchCandidateStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchCandidateStore(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchCandidateStore {
	if index == "" {
		index = DefaultCandidateIndex
	}
	return &ElasticsearchCandidateStore{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-store", "backend": "elasticsearch"}),
	}
}

func buildCandidateQuery(filter models.CandidateFilter) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"isActive": true}},
		},
	}
	if len(filter.ExcludeIDs) > 0 {
		boolQuery["must_not"] = []interface{}{
			map[string]interface{}{"ids": map[string]interface{}{"values": filter.ExcludeIDs}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"_doc": "asc"}},
	}
}

func (s *ElasticsearchCandidateStore) ListCandidates(ctx context.Context, filter models.CandidateFilter) (*models.CandidateBatch, error) {
	body, err := json.Marshal(buildCandidateQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("encode candidate query: %w", err)
	}
	size := filter.Limit
	if size <= 0 {
		size = defaultSearchSize
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search candidates: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	batch := &models.CandidateBatch{}
	for _, hit := range r.Hits.Hits {
		c, err := decodeCandidateDoc(hit.ID, hit.Source)
		if err != nil {
			batch.Failures = append(batch.Failures, models.CandidateLoadFailure{CandidateID: hit.ID, Err: err})
			continue
		}
		batch.Profiles = append(batch.Profiles, c)
	}
	return batch, nil
}

func (s *ElasticsearchCandidateStore) GetCandidate(ctx context.Context, id string) (*models.CandidateProfile, error) {
	res, err := s.client.Get(s.index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get candidate %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get candidate %s: %s", id, res.String())
	}

	var doc struct {
		ID     string                 `json:"_id"`
		Found  bool                   `json:"found"`
		Source map[string]interface{} `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode candidate %s: %w", id, err)
	}
	if !doc.Found {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}
	c, err := decodeCandidateDoc(doc.ID, doc.Source)
	if err != nil {
		return nil, fmt.Errorf("decode candidate %s: %w", id, err)
	}
	return &c, nil
}

// decodeCandidateDoc converts a loosely typed document. Errors in core fields
// fail the candidate; errors in auxiliary sections only degrade it.
func decodeCandidateDoc(id string, src map[string]interface{}) (models.CandidateProfile, error) {
	if v, ok := src["id"]; ok && cast.ToString(v) != "" {
		id = cast.ToString(v)
	}
	if id == "" {
		return models.CandidateProfile{}, fmt.Errorf("document has no id")
	}

	c := models.CandidateProfile{
		ID:                   id,
		DisplayName:          cast.ToString(src["displayName"]),
		Headline:             cast.ToString(src["headline"]),
		Skills:               cast.ToStringSlice(src["skills"]),
		VerificationTier:     models.VerificationTier(strings.ToUpper(cast.ToString(src["verificationTier"]))),
		PlatformProjectCount: cast.ToInt(src["platformProjectCount"]),
		Endorsements:         map[string]int{},
	}

	var err error
	if c.HourlyRate, err = optionalFloat(src, "hourlyRate"); err != nil {
		return c, err
	}
	if c.HourlyRate != nil && *c.HourlyRate < 0 {
		return c, fmt.Errorf("negative hourlyRate %v", *c.HourlyRate)
	}
	if c.YearsExperience, err = optionalFloat(src, "yearsExperience"); err != nil {
		return c, err
	}
	if c.TrustScore, err = optionalFloat(src, "trustScore"); err != nil {
		return c, err
	}

	for skill, n := range cast.ToStringMap(src["endorsements"]) {
		if count := cast.ToInt(n); count > 0 {
			c.Endorsements[strings.ToLower(skill)] = count
		}
	}

	if err := decodeComplianceSections(&c, src); err != nil {
		c.Degraded = append(c.Degraded, SectionCompliance)
	}
	if raw, ok := src["workPattern"]; ok && raw != nil {
		wp, err := decodeWorkPattern(raw)
		if err != nil {
			c.Degraded = append(c.Degraded, SectionWorkPattern)
		} else {
			c.WorkPattern = wp
		}
	}
	if raw, ok := src["successMetrics"]; ok && raw != nil {
		m, err := decodeSuccessMetrics(raw)
		if err != nil {
			c.Degraded = append(c.Degraded, SectionSuccessMetrics)
		} else {
			c.SuccessMetrics = m
		}
	}
	return c, nil
}

func optionalFloat(src map[string]interface{}, key string) (*float64, error) {
	raw, ok := src[key]
	if !ok || raw == nil {
		return nil, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return &v, nil
}

func optionalTime(m map[string]interface{}, key string) (*time.Time, error) {
	raw, ok := m[key]
	if !ok || raw == nil || raw == "" {
		return nil, nil
	}
	t, err := cast.ToTimeE(raw)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return &t, nil
}

func toMaps(raw interface{}) ([]map[string]interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeComplianceSections(c *models.CandidateProfile, src map[string]interface{}) error {
	records, err := toMaps(src["complianceRecords"])
	if err != nil {
		return err
	}
	for _, m := range records {
		rec := models.ComplianceRecord{
			Type:         cast.ToString(m["type"]),
			Status:       models.VerificationStatus(strings.ToUpper(cast.ToString(m["status"]))),
			SelfAttested: cast.ToBool(m["selfAttested"]),
		}
		if rec.ExpiresAt, err = optionalTime(m, "expiresAt"); err != nil {
			return err
		}
		c.ComplianceRecords = append(c.ComplianceRecords, rec)
	}

	clearances, err := toMaps(src["clearances"])
	if err != nil {
		return err
	}
	for _, m := range clearances {
		rec := models.ClearanceRecord{Level: models.ClearanceLevel(strings.ToUpper(cast.ToString(m["level"])))}
		if rec.GrantedAt, err = optionalTime(m, "grantedAt"); err != nil {
			return err
		}
		if rec.ExpiresAt, err = optionalTime(m, "expiresAt"); err != nil {
			return err
		}
		c.Clearances = append(c.Clearances, rec)
	}

	attestations, err := toMaps(src["attestations"])
	if err != nil {
		return err
	}
	for _, m := range attestations {
		attested, err := cast.ToTimeE(m["attestedAt"])
		if err != nil {
			return fmt.Errorf("field attestedAt: %w", err)
		}
		rec := models.AttestationRecord{Type: cast.ToString(m["type"]), AttestedAt: attested}
		if rec.ExpiresAt, err = optionalTime(m, "expiresAt"); err != nil {
			return err
		}
		c.Attestations = append(c.Attestations, rec)
	}
	return nil
}

func decodeWorkPattern(raw interface{}) (*models.WorkPattern, error) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, err
	}
	wp := &models.WorkPattern{
		Timezone:              cast.ToString(m["timezone"]),
		MaxConcurrentProjects: cast.ToInt(m["maxConcurrentProjects"]),
		CurrentActiveProjects: cast.ToInt(m["currentActiveProjects"]),
		WeeklyHoursAvailable:  cast.ToFloat64(m["weeklyHoursAvailable"]),
	}
	if wp.AvailableFrom, err = optionalTime(m, "availableFrom"); err != nil {
		return nil, err
	}
	if wp.LastActiveAt, err = optionalTime(m, "lastActiveAt"); err != nil {
		return nil, err
	}
	if wp.AvgResponseTimeMinutes, err = optionalFloat(m, "avgResponseTimeMinutes"); err != nil {
		return nil, err
	}
	if wp.AvgFirstBidTimeHours, err = optionalFloat(m, "avgFirstBidTimeHours"); err != nil {
		return nil, err
	}
	return wp, nil
}

func decodeSuccessMetrics(raw interface{}) (*models.SuccessMetrics, error) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, err
	}
	return &models.SuccessMetrics{
		TotalProjects:      cast.ToInt(m["totalProjects"]),
		CompletedProjects:  cast.ToInt(m["completedProjects"]),
		AvgRating:          cast.ToFloat64(m["avgRating"]),
		OnTimeDeliveryRate: cast.ToFloat64(m["onTimeDeliveryRate"]),
		RepeatClientRate:   cast.ToFloat64(m["repeatClientRate"]),
	}, nil
}
