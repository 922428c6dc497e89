package reports

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

// Service renders indicator snapshots as PDF briefings and markdown
// digests.
type Service struct {
	config *common.ReportsConfig
	logger arbor.ILogger
}

// NewService creates a reports service.
func NewService(config *common.ReportsConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// WriteBriefing renders the snapshot as a PDF under the configured output
// directory and returns the file path.
func (s *Service) WriteBriefing(snapshot *models.IndicatorSnapshot) (string, error) {
	data, err := s.RenderPDF(snapshot)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("briefing_%s_%s.pdf", snapshot.Window, snapshot.WindowEnd.Format("20060102_1504"))
	path := filepath.Join(s.config.OutputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write briefing: %w", err)
	}

	s.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Briefing written")
	return path, nil
}

// RenderPDF renders the snapshot as PDF bytes.
func (s *Service) RenderPDF(snapshot *models.IndicatorSnapshot) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "News Intelligence Briefing", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Window: %s ending %s | %d articles",
		snapshot.Window,
		snapshot.WindowEnd.Format("2006-01-02 15:04 MST"),
		snapshot.ArticleCount), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	s.sectionHeading(pdf, "National Sentiment")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Volume-weighted sentiment: %.3f", snapshot.NationalSentiment), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Distribution: %d positive / %d neutral / %d negative",
		snapshot.SentimentDistribution[models.SentimentPositive],
		snapshot.SentimentDistribution[models.SentimentNeutral],
		snapshot.SentimentDistribution[models.SentimentNegative]), "", 1, "L", false, 0, "")
	if snapshot.Volume.Anomalous {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("VOLUME ANOMALY: %d articles against a baseline mean of %.1f (z=%.2f)",
			snapshot.Volume.Current, snapshot.Volume.BaselineMean, snapshot.Volume.ZScore), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	s.sectionHeading(pdf, "Sectors")
	s.sectorTable(pdf, snapshot.Sectors)
	pdf.Ln(4)

	if len(snapshot.Flags) > 0 {
		s.sectionHeading(pdf, "Flagged Events")
		pdf.SetFont("Arial", "", 9)
		for _, flag := range snapshot.Flags {
			line := fmt.Sprintf("[%s/%s] %s (%.2f; %s)",
				strings.ToUpper(string(flag.Type)), flag.Severity, flag.Title, flag.Sentiment, flag.Sector)
			pdf.MultiCell(0, 5, line, "", "L", false)
		}
		pdf.Ln(4)
	}

	if len(snapshot.Correlations) > 0 {
		s.sectionHeading(pdf, "Sector Correlations")
		pdf.SetFont("Arial", "", 9)
		for _, corr := range snapshot.Correlations {
			line := fmt.Sprintf("%s / %s: %d co-mentions, jaccard %.2f (%s)",
				corr.Sector1, corr.Sector2, corr.CoMentions, corr.Jaccard, corr.Strength)
			pdf.MultiCell(0, 5, line, "", "L", false)
		}
		pdf.Ln(4)
	}

	if len(snapshot.TopTopics) > 0 {
		s.sectionHeading(pdf, "Top Topics")
		pdf.SetFont("Arial", "", 9)
		var topics []string
		for _, t := range snapshot.TopTopics {
			topics = append(topics, fmt.Sprintf("%s (%d)", t.Topic, t.Count))
		}
		pdf.MultiCell(0, 5, strings.Join(topics, ", "), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate briefing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) sectionHeading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func (s *Service) sectorTable(pdf *fpdf.Fpdf, sectors []models.SectorIndicator) {
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(40, 6, "Sector", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Articles", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Sentiment", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Velocity", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Cluster", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, sector := range sectors {
		pdf.CellFormat(40, 6, string(sector.Sector), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", sector.ArticleCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", sector.MeanSentiment), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%+.2f", sector.Velocity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, string(sector.Cluster), "1", 1, "L", false, 0, "")
	}
}

// RenderMarkdown renders the snapshot as a markdown digest, used where a
// textual briefing is wanted instead of a PDF.
func (s *Service) RenderMarkdown(snapshot *models.IndicatorSnapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# News Intelligence Briefing\n\n")
	fmt.Fprintf(&sb, "Window: %s ending %s; %d articles\n\n",
		snapshot.Window, snapshot.WindowEnd.Format("2006-01-02 15:04 MST"), snapshot.ArticleCount)
	fmt.Fprintf(&sb, "## National Sentiment\n\nVolume-weighted sentiment: %.3f\n\n", snapshot.NationalSentiment)

	if snapshot.Volume.Anomalous {
		fmt.Fprintf(&sb, "**Volume anomaly**: %d articles against a baseline mean of %.1f\n\n",
			snapshot.Volume.Current, snapshot.Volume.BaselineMean)
	}

	sb.WriteString("## Sectors\n\n| Sector | Articles | Sentiment | Velocity | Cluster |\n|---|---|---|---|---|\n")
	for _, sector := range snapshot.Sectors {
		fmt.Fprintf(&sb, "| %s | %d | %.3f | %+.2f | %s |\n",
			sector.Sector, sector.ArticleCount, sector.MeanSentiment, sector.Velocity, sector.Cluster)
	}
	sb.WriteString("\n")

	if len(snapshot.Flags) > 0 {
		sb.WriteString("## Flagged Events\n\n")
		for _, flag := range snapshot.Flags {
			fmt.Fprintf(&sb, "- [%s/%s] %s (%.2f; %s)\n",
				strings.ToUpper(string(flag.Type)), flag.Severity, flag.Title, flag.Sentiment, flag.Sector)
		}
	}

	if len(snapshot.Correlations) > 0 {
		sb.WriteString("\n## Sector Correlations\n\n")
		for _, corr := range snapshot.Correlations {
			fmt.Fprintf(&sb, "- %s / %s: %d co-mentions, jaccard %.2f (%s)\n",
				corr.Sector1, corr.Sector2, corr.CoMentions, corr.Jaccard, corr.Strength)
		}
	}

	return sb.String()
}
