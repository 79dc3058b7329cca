package feeds

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"pagesentry/internal/config"
	"pagesentry/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func TestRiskForPriority(t *testing.T) {
	tests := []struct {
		priority int
		want     float64
	}{
		{priority: 1, want: 0.4},
		{priority: 2, want: 0.3},
		{priority: 3, want: 0.2},
		{priority: 4, want: 0.1},
		{priority: 5, want: 0.1}, // floored, never zero for a listed domain
		{priority: 9, want: 0.1},
	}

	for _, tt := range tests {
		got := riskForPriority(tt.priority)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("riskForPriority(%d) = %.2f, want %.2f", tt.priority, got, tt.want)
		}
	}
}

func TestOpenPhishParseFeed(t *testing.T) {
	c := NewOpenPhishConnector(testLogger())

	feed := strings.Join([]string{
		"# comment line",
		"",
		"http://phish-one.example.tk/login",
		"https://phish-two.example.ml/verify",
		"http://phish-one.example.tk/other-path",
		"not-a-url-line",
		"https://upper.example.com/x",
	}, "\n")

	domains, total := c.parseFeed(strings.NewReader(feed))

	if total != 4 {
		t.Errorf("total = %d, want 4 URL lines", total)
	}
	if len(domains) != 3 {
		t.Fatalf("len(domains) = %d, want 3 unique hosts", len(domains))
	}
	want := map[string]bool{
		"phish-one.example.tk": true,
		"phish-two.example.ml": true,
		"upper.example.com":    true,
	}
	for _, d := range domains {
		if !want[d] {
			t.Errorf("unexpected domain %q", d)
		}
	}
}

func TestURLhausParseFeed(t *testing.T) {
	c := NewURLhausConnector(testLogger())

	data := []byte(`{
		"1": [{"url": "http://malware.example.xyz/payload.exe", "url_status": "online", "threat": "malware_download"}],
		"2": [{"url": "http://malware.example.xyz/second.exe", "url_status": "online", "threat": "malware_download"}],
		"3": [{"url": "https://another.example.top/drop", "url_status": "offline", "threat": "malware_download"}],
		"4": [{"url": "", "url_status": "", "threat": ""}]
	}`)

	domains, total, err := c.parseFeed(data)
	if err != nil {
		t.Fatalf("parseFeed() error = %v", err)
	}

	if total != 3 {
		t.Errorf("total = %d, want 3 non-empty URLs", total)
	}
	if len(domains) != 2 {
		t.Errorf("len(domains) = %d, want 2 unique hosts", len(domains))
	}
}

func TestURLhausParseFeedMalformed(t *testing.T) {
	c := NewURLhausConnector(testLogger())

	if _, _, err := c.parseFeed([]byte(`[not an object]`)); err == nil {
		t.Error("parseFeed() expected error for wrong JSON shape")
	}
}

func TestRegistryOrdersByPriority(t *testing.T) {
	registry := NewRegistry(testLogger())

	urlhaus := NewURLhausConnector(testLogger())     // priority 2
	openphish := NewOpenPhishConnector(testLogger()) // priority 4

	if err := registry.Register(openphish); err != nil {
		t.Fatalf("Register(openphish) error = %v", err)
	}
	if err := registry.Register(urlhaus); err != nil {
		t.Fatalf("Register(urlhaus) error = %v", err)
	}

	enabled := registry.ListEnabled()
	if len(enabled) != 2 {
		t.Fatalf("len(ListEnabled()) = %d, want 2", len(enabled))
	}
	if enabled[0].Slug() != urlhausSlug {
		t.Errorf("first connector = %s, want the higher-priority urlhaus", enabled[0].Slug())
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry(testLogger())

	if err := registry.Register(NewOpenPhishConnector(testLogger())); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register(NewOpenPhishConnector(testLogger())); err == nil {
		t.Error("Register() expected error for duplicate slug")
	}
}

func TestRegistrySkipsDisabled(t *testing.T) {
	registry := NewRegistry(testLogger())

	conn := NewOpenPhishConnector(testLogger())
	conn.Configure(config.FeedConfig{Enabled: false})
	if err := registry.Register(conn); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if got := len(registry.ListEnabled()); got != 0 {
		t.Errorf("len(ListEnabled()) = %d, want 0 with the connector disabled", got)
	}
	if _, err := registry.Fetch(context.Background(), openPhishSlug); err == nil {
		t.Error("Fetch() expected error for a disabled connector")
	}
}

func TestBaseConnectorConfigure(t *testing.T) {
	base := NewBaseConnector("test", "Test", 3, "https://feed.example.com/list", time.Hour)

	base.Configure(config.FeedConfig{
		Enabled:        true,
		UpdateInterval: 30 * time.Minute,
		FeedURL:        "https://mirror.example.com/list",
		Priority:       1,
	})

	if !base.IsEnabled() {
		t.Error("connector should be enabled")
	}
	if base.UpdateInterval() != 30*time.Minute {
		t.Errorf("UpdateInterval() = %s, want 30m", base.UpdateInterval())
	}
	if base.FeedURL() != "https://mirror.example.com/list" {
		t.Errorf("FeedURL() = %s, want the override", base.FeedURL())
	}
	if base.Priority() != 1 {
		t.Errorf("Priority() = %d, want 1", base.Priority())
	}
}
