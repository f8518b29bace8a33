package domain

import "strings"

// CloudType is one entry of the static cloud catalog.
type CloudType struct {
	Name                string `json:"name"`
	Abbreviation        string `json:"abbreviation"`
	Description         string `json:"description"`
	WeatherSignificance string `json:"weather_significance"`
	Altitude            string `json:"altitude"`
	Appearance          string `json:"appearance"`
}

var cloudTypes = [...]CloudType{
	{
		Name:                "Altocumulus",
		Abbreviation:        "Ac",
		Description:         "Mid-level clouds with gray or white patches, often in waves or bands",
		WeatherSignificance: "Morning altocumulus on a warm, humid day can signal afternoon thunderstorms",
		Altitude:            "2,000-7,000 m (6,500-23,000 ft)",
		Appearance:          "White or gray rounded masses or rolls, partly shaded, arranged in layers",
	},
	{
		Name:                "Altostratus",
		Abbreviation:        "As",
		Description:         "Mid-level gray or blue-gray sheets that often cover the entire sky",
		WeatherSignificance: "Often precedes storms with continuous rain or snow",
		Altitude:            "2,000-7,000 m (6,500-23,000 ft)",
		Appearance:          "Uniform grayish sheet through which the sun shows as a dim disk",
	},
	{
		Name:                "Cirrocumulus",
		Abbreviation:        "Cc",
		Description:         "High, thin clouds arranged in rows of small white patches",
		WeatherSignificance: "Indicates fair but cold weather and rarely produces precipitation",
		Altitude:            "5,000-13,000 m (16,500-45,000 ft)",
		Appearance:          "Small white ripples or grains forming a mackerel sky",
	},
	{
		Name:                "Cirrostratus",
		Abbreviation:        "Cs",
		Description:         "Thin, sheet-like high clouds that often cover the entire sky",
		WeatherSignificance: "Often precedes a warm front, with precipitation within 12-24 hours",
		Altitude:            "5,000-13,000 m (16,500-45,000 ft)",
		Appearance:          "Transparent whitish veil that frequently produces a halo around the sun or moon",
	},
	{
		Name:                "Cirrus",
		Abbreviation:        "Ci",
		Description:         "Thin, wispy high clouds made of ice crystals",
		WeatherSignificance: "Fair weather now, but thickening cirrus can announce an approaching system",
		Altitude:            "5,000-13,000 m (16,500-45,000 ft)",
		Appearance:          "Delicate white filaments or hooked streaks, sometimes called mares' tails",
	},
	{
		Name:                "Cumulonimbus",
		Abbreviation:        "Cb",
		Description:         "Towering clouds that produce thunderstorms and severe weather",
		WeatherSignificance: "Heavy rain, lightning, hail, strong gusts and possibly tornadoes",
		Altitude:            "Base 500-2,000 m, tops up to 12,000-18,000 m",
		Appearance:          "Massive dark tower with a flattened anvil-shaped top",
	},
	{
		Name:                "Cumulus",
		Abbreviation:        "Cu",
		Description:         "Puffy, cotton-like clouds with flat bases and rounded tops",
		WeatherSignificance: "Usually fair weather; strong vertical growth may lead to showers",
		Altitude:            "500-2,000 m (1,600-6,500 ft)",
		Appearance:          "Detached dense white heaps with sharp outlines and flat darker bases",
	},
	{
		Name:                "Nimbostratus",
		Abbreviation:        "Ns",
		Description:         "Dark, thick clouds that produce steady rain or snow",
		WeatherSignificance: "Associated with prolonged, continuous precipitation and overcast skies",
		Altitude:            "500-3,000 m (1,600-10,000 ft)",
		Appearance:          "Thick featureless dark gray layer that blots out the sun",
	},
	{
		Name:                "Stratocumulus",
		Abbreviation:        "Sc",
		Description:         "Low, lumpy gray or white patches arranged in rows or groups",
		WeatherSignificance: "Rarely produces more than light drizzle and indicates stable conditions",
		Altitude:            "500-2,000 m (1,600-6,500 ft)",
		Appearance:          "Gray or whitish rounded masses with gaps of blue sky between them",
	},
	{
		Name:                "Stratus",
		Abbreviation:        "St",
		Description:         "Low, gray clouds that often cover the entire sky like a blanket",
		WeatherSignificance: "May bring drizzle, mist or fog and reduced visibility",
		Altitude:            "Surface-2,000 m (0-6,500 ft)",
		Appearance:          "Uniform gray layer with a fairly even base, resembling lifted fog",
	},
	// Dataset folders labelled Ct resolve here, not to Cumulonimbus (Cb).
	{
		Name:                "Contrail",
		Abbreviation:        "Ct",
		Description:         "Man-made clouds formed by aircraft exhaust in the atmosphere",
		WeatherSignificance: "Persistent, spreading contrails point to moist upper air ahead of a front",
		Altitude:            "8,000-12,000 m (26,000-40,000 ft)",
		Appearance:          "Long narrow white lines that may spread into cirrus-like sheets",
	},
}

// CloudTypeCount is the number of entries in the catalog.
const CloudTypeCount = len(cloudTypes)

// CloudTypes returns a copy of the catalog in its fixed order.
func CloudTypes() []CloudType {
	out := make([]CloudType, len(cloudTypes))
	copy(out, cloudTypes[:])
	return out
}

// CloudTypeNames returns the catalog names in their fixed order.
func CloudTypeNames() []string {
	names := make([]string, len(cloudTypes))
	for i := range cloudTypes {
		names[i] = cloudTypes[i].Name
	}
	return names
}

// LookupCloudType finds a record by exact name.
func LookupCloudType(name string) (CloudType, bool) {
	for i := range cloudTypes {
		if cloudTypes[i].Name == name {
			return cloudTypes[i], true
		}
	}
	return CloudType{}, false
}

// LookupAbbreviation finds a record by its two-letter abbreviation, ignoring case.
func LookupAbbreviation(abbr string) (CloudType, bool) {
	abbr = strings.TrimSpace(abbr)
	for i := range cloudTypes {
		if strings.EqualFold(cloudTypes[i].Abbreviation, abbr) {
			return cloudTypes[i], true
		}
	}
	return CloudType{}, false
}
