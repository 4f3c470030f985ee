package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codeGROOVE-dev/crossmap/pkg/cluster"
	"github.com/codeGROOVE-dev/crossmap/pkg/compare"
	"github.com/codeGROOVE-dev/crossmap/pkg/influence"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes a human-readable rendering of r.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("CROSS-PLATFORM MAPPING") + "\n")
	fmt.Fprintf(&b, "cards: %d  threshold: %d\n\n", r.CardCount, r.Threshold)

	writeCards(&b, r.Cards)
	writeComparison(&b, &r.Comparison)
	writeClusters(&b, &r.Clusters)
	writeInfluence(&b, &r.Influence, r.BridgeLimit)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCards(b *strings.Builder, cards []CardSummary) {
	b.WriteString(sectionStyle.Render("Cards") + "\n")
	if len(cards) == 0 {
		b.WriteString(mutedStyle.Render("no cards collected") + "\n\n")
		return
	}
	for i, c := range cards {
		fmt.Fprintf(b, "%3d. %s (%s)  followers=%d following=%d mutual=%d commenters=%d\n",
			i+1, c.Platform, c.Network, c.Followers, c.Following, c.Mutual, c.Commenters)
		if len(c.WebLinks) > 0 {
			fmt.Fprintf(b, "     links: %s\n", strings.Join(c.WebLinks, ", "))
		}
		var metrics []string
		for _, m := range []struct{ name, v string }{
			{"likes", c.PostLikes}, {"comments", c.PostComments}, {"shares", c.PostShares},
			{"post views", c.PostViews}, {"views", c.Views},
		} {
			if m.v != "" {
				metrics = append(metrics, m.name+"="+m.v)
			}
		}
		if len(metrics) > 0 {
			fmt.Fprintf(b, "     %s\n", strings.Join(metrics, " "))
		}
	}
	b.WriteString("\n")
}

func writeComparison(b *strings.Builder, res *compare.Result) {
	b.WriteString(sectionStyle.Render("Platform comparison") + "\n")
	if res.Status != compare.StatusOK {
		b.WriteString(mutedStyle.Render("insufficient data: need following lists from at least 2 platforms") + "\n\n")
		return
	}
	for _, p := range res.Pairs {
		fmt.Fprintf(b, "%s <-> %s\n", p.First, p.Second)
		fmt.Fprintf(b, "  exact (%d): %s\n", len(p.Exact), strings.Join(p.Exact, ", "))
		fmt.Fprintf(b, "  fuzzy (%d):\n", len(p.Fuzzy))
		for _, m := range p.Fuzzy {
			fmt.Fprintf(b, "    %s ~ %s (%d%%)\n", m.First, m.Second, m.Score)
		}
		fmt.Fprintf(b, "  only %s (%d): %s\n", p.First, len(p.OnlyFirst), strings.Join(p.OnlyFirst, ", "))
		fmt.Fprintf(b, "  only %s (%d): %s\n", p.Second, len(p.OnlySecond), strings.Join(p.OnlySecond, ", "))
	}
	b.WriteString("\n")
}

func writeClusters(b *strings.Builder, res *cluster.Result) {
	b.WriteString(sectionStyle.Render("Identity clusters") + "\n")
	if res.Status != cluster.StatusOK {
		b.WriteString(mutedStyle.Render("no following data") + "\n\n")
		return
	}
	if len(res.Identities) == 0 {
		b.WriteString(mutedStyle.Render("no usernames matched across observations") + "\n\n")
		return
	}
	for i, id := range res.Identities {
		fmt.Fprintf(b, "identity %d (%s)\n", i+1, strings.Join(id.Platforms, ", "))
		for _, m := range id.Members {
			fmt.Fprintf(b, "  %-12s %s (%d%%)\n", m.Platform, m.Username, m.Confidence)
		}
	}
	b.WriteString("\n")
}

func writeInfluence(b *strings.Builder, res *influence.Result, bridgeLimit int) {
	b.WriteString(sectionStyle.Render("Influence") + "\n")
	if res.Status != influence.StatusOK {
		b.WriteString(mutedStyle.Render("no connection data") + "\n")
		return
	}

	s := res.Stats
	fmt.Fprintf(b, "profiles: %d  multi-platform: %d (%.1f%%)  avg platforms: %.2f\n",
		s.TotalProfiles, s.MultiPlatform, s.MultiPlatformPercent, s.AvgPlatformsPerProfile)
	for _, tc := range s.ConnectionDistribution {
		fmt.Fprintf(b, "  %-10s %d\n", tc.Type, tc.Profiles)
	}

	b.WriteString("\nranked:\n")
	for i, p := range res.Ranked {
		fmt.Fprintf(b, "%3d. %-24s score=%.1f platforms=%s names=%s\n",
			i+1, p.Key, p.InfluenceScore, strings.Join(p.Platforms, ","), strings.Join(p.Names, ","))
	}

	if bridgeLimit > 0 {
		fmt.Fprintf(b, "\nbridges (top %d):\n", bridgeLimit)
	} else {
		b.WriteString("\nbridges:\n")
	}
	if len(res.Bridges) == 0 {
		b.WriteString(mutedStyle.Render("  none") + "\n")
	}
	for _, p := range res.Bridges {
		fmt.Fprintf(b, "  %-24s %s\n", p.Key, strings.Join(p.Platforms, ", "))
	}
}
