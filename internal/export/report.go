package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/lumipallolabs/treemapview/internal/model"
	"github.com/lumipallolabs/treemapview/internal/treemap"
)

var (
	ColorMuted  = lipgloss.Color("#6B7280")
	ColorBorder = lipgloss.Color("#3F3F46")

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E4E4E7"))

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	SizeStyle = lipgloss.NewStyle().
			Width(10).
			Align(lipgloss.Right)

	ShareStyle = lipgloss.NewStyle().
			Width(7).
			Align(lipgloss.Right).
			Foreground(ColorMuted)

	CategoryStyle = lipgloss.NewStyle().
			Width(11)
)

// FormatSize formats bytes to a human readable string
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// Largest returns up to n leaf tiles of m, biggest first
func Largest(tree *model.Tree, m *treemap.Treemap, n int) []*treemap.Tile {
	leaves := m.Leaves()
	sort.SliceStable(leaves, func(i, j int) bool {
		return tree.Node(leaves[i].Node).Size > tree.Node(leaves[j].Node).Size
	})
	if n > 0 && len(leaves) > n {
		leaves = leaves[:n]
	}
	return leaves
}

// WriteReport prints the n largest tiles of m with their size, share of the
// root and category swatch
func WriteReport(w io.Writer, tree *model.Tree, m *treemap.Treemap, n int) error {
	if m == nil {
		_, err := fmt.Fprintln(w, "treemap suppressed: view too small")
		return err
	}

	rootNode := tree.Node(m.Root.Node)
	total := rootNode.Size

	var lines []string
	lines = append(lines, HeaderStyle.Render(fmt.Sprintf("%s  %s in %d tiles",
		tree.URL(m.Root.Node), FormatSize(total), m.Len())))

	for _, t := range Largest(tree, m, n) {
		node := tree.Node(t.Node)
		share := 0.0
		if total > 0 {
			share = 100 * float64(node.Size) / float64(total)
		}
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(Hex(t.Color))).
			Render("  ")
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			swatch, " ",
			CategoryStyle.Render(t.Category.String()),
			SizeStyle.Render(FormatSize(node.Size)),
			ShareStyle.Render(fmt.Sprintf("%.1f%%", share)),
			"  ", tree.URL(t.Node),
		))
	}

	_, err := fmt.Fprintln(w, PanelStyle.Render(strings.Join(lines, "\n")))
	return err
}
