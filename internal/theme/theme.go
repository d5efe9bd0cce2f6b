package theme

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Background lipgloss.Color
	Grid       lipgloss.Color
	Text       lipgloss.Color
	Series     []lipgloss.Color
	FillAlpha  float64

	AppFrame       lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderValue    lipgloss.Style
	StatusBar      lipgloss.Style
	StatusBarKey   lipgloss.Style
	StatusBarValue lipgloss.Style
	PaneTitle      lipgloss.Style
	LegendHidden   lipgloss.Style
	LegendValue    lipgloss.Style
	Notification   lipgloss.Style
	Error          lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Background: lipgloss.Color("#1A1724"),
		Grid:       lipgloss.Color("#403B59"),
		Text:       lipgloss.Color("#A6A1BB"),
		Series: []lipgloss.Color{
			lipgloss.Color("#7D56F4"),
			lipgloss.Color("#15AABF"),
			lipgloss.Color("#FF7A45"),
			lipgloss.Color("#33C481"),
			lipgloss.Color("#FFB61E"),
			lipgloss.Color("#FF6E6E"),
			lipgloss.Color("#A78BFA"),
			lipgloss.Color("#5FB3B3"),
		},
		FillAlpha: 0.2,
		AppFrame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#403B59")),
		Header:         lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E1FF")).Padding(0, 1),
		HeaderTitle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		HeaderValue:    lipgloss.NewStyle().Foreground(lipgloss.Color("#D1CFF6")),
		StatusBar:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		StatusBarKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		StatusBarValue: lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		PaneTitle:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Bold(true),
		LegendHidden:   lipgloss.NewStyle().Foreground(lipgloss.Color("#5E5A72")).Strikethrough(true),
		LegendValue:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		Notification:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E0DEF4")).Background(lipgloss.Color("#433C59")).Padding(0, 1),
		Error:          lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
	}
}

// SeriesColor cycles through the palette by series index.
func (t Theme) SeriesColor(idx int) lipgloss.Color {
	if len(t.Series) == 0 {
		return lipgloss.Color("#7D56F4")
	}
	if idx < 0 {
		idx = -idx
	}
	return t.Series[idx%len(t.Series)]
}

// LegendStyle is the bold series label style for a series color.
func (t Theme) LegendStyle(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
