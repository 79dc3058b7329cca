package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"pagesentry/internal/domain/models"
	"pagesentry/pkg/logger"
)

// Default rule sources used when config leaves the paths empty.
const (
	DefaultIndicatorFile = "rules/indicator_rules.json"
	DefaultAlertFile     = "rules/alert_feed.json"
)

// alertFeed is the wire shape of the alert collection: a wrapper object
// around the same rule schema as the flat indicator file.
type alertFeed struct {
	Alerts []models.Rule `json:"alerts"`
}

// FileLoader reads the two rule collections from local JSON files. The
// indicator file holds a flat rule array; the alert file wraps its rules in
// an alerts object. Severity defaults to med when absent, matching the rest
// of the corpus.
type FileLoader struct {
	indicatorPath string
	alertPath     string
	log           *logger.Logger
}

func NewFileLoader(indicatorPath, alertPath string, log *logger.Logger) *FileLoader {
	if indicatorPath == "" {
		indicatorPath = DefaultIndicatorFile
	}
	if alertPath == "" {
		alertPath = DefaultAlertFile
	}
	return &FileLoader{
		indicatorPath: indicatorPath,
		alertPath:     alertPath,
		log:           log.WithComponent("rule_loader"),
	}
}

// IndicatorRules loads the flat indicator ruleset.
func (l *FileLoader) IndicatorRules(ctx context.Context) ([]models.Rule, error) {
	data, err := os.ReadFile(l.indicatorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read indicator rules %s: %w", l.indicatorPath, err)
	}

	var rules []models.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse indicator rules %s: %w", l.indicatorPath, err)
	}

	normalize(rules, "indicator")
	l.log.Info().Int("count", len(rules)).Str("path", l.indicatorPath).Msg("Loaded indicator rules")
	return rules, nil
}

// AlertRules loads the time-sensitive alert feed.
func (l *FileLoader) AlertRules(ctx context.Context) ([]models.Rule, error) {
	data, err := os.ReadFile(l.alertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert feed %s: %w", l.alertPath, err)
	}

	var feed alertFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse alert feed %s: %w", l.alertPath, err)
	}

	normalize(feed.Alerts, "alert")
	l.log.Info().Int("count", len(feed.Alerts)).Str("path", l.alertPath).Msg("Loaded alert feed")
	return feed.Alerts, nil
}

func normalize(rules []models.Rule, source string) {
	for i := range rules {
		if rules[i].Severity == "" {
			rules[i].Severity = models.SeverityMed
		}
		if rules[i].Source == "" {
			rules[i].Source = source
		}
	}
}

// StaticSource serves fixed in-memory rule slices. Used by tests and by the
// degraded-startup path when no rule files exist.
type StaticSource struct {
	Indicators []models.Rule
	Alerts     []models.Rule
}

func (s StaticSource) IndicatorRules(ctx context.Context) ([]models.Rule, error) {
	return s.Indicators, nil
}

func (s StaticSource) AlertRules(ctx context.Context) ([]models.Rule, error) {
	return s.Alerts, nil
}
