package chart

// barColor is the single-series fill used by bar and histogram charts.
const barColor = "#36A2EB"

// piePalette cycles across pie and donut slices.
var piePalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF9F40",
}

// groupPalette cycles across grouped and stacked bar sub-series.
var groupPalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#E7E9ED", "#76D7C4", "#F1948A", "#85C1E9",
	"#D7BDE2", "#F8C471", "#73C6B6", "#F0B27A", "#AEB6BF",
	"#EC7063", "#5DADE2", "#58D68D", "#AF7AC5", "#F4D03F",
}

func pieColors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = piePalette[i%len(piePalette)]
	}
	return out
}

func groupColor(i int) string {
	return groupPalette[i%len(groupPalette)]
}
