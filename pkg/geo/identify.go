package geo

import "strings"

var countries = []string{
	"Afghanistan", "Albania", "Algeria", "Andorra", "Angola", "Antigua and Barbuda", "Argentina", "Armenia", "Australia", "Austria", "Azerbaijan",
	"Bahamas", "Bahrain", "Bangladesh", "Barbados", "Belarus", "Belgium", "Belize", "Benin", "Bhutan", "Bolivia", "Bosnia and Herzegovina", "Botswana", "Brazil", "Brunei", "Bulgaria", "Burkina Faso", "Burundi",
	"Cambodia", "Cameroon", "Canada", "Cape Verde", "Central African Republic", "Chad", "Chile", "China", "Colombia", "Comoros", "Costa Rica", "Croatia", "Cuba", "Cyprus", "Czech Republic",
	"Denmark", "Djibouti", "Dominica", "Dominican Republic",
	"East Timor", "Ecuador", "Egypt", "El Salvador", "Equatorial Guinea", "Eritrea", "Estonia", "Eswatini", "Ethiopia",
	"Fiji", "Finland", "France",
	"Gabon", "Gambia", "Georgia", "Germany", "Ghana", "Greece", "Grenada", "Guatemala", "Guinea", "Guinea-Bissau", "Guyana",
	"Haiti", "Honduras", "Hong Kong", "Hungary",
	"Iceland", "India", "Indonesia", "Iran", "Iraq", "Ireland", "Israel", "Italy", "Ivory Coast",
	"Jamaica", "Japan", "Jordan",
	"Kazakhstan", "Kenya", "Kiribati", "North Korea", "South Korea", "Kosovo", "Kuwait", "Kyrgyzstan",
	"Laos", "Latvia", "Lebanon", "Lesotho", "Liberia", "Libya", "Liechtenstein", "Lithuania", "Luxembourg",
	"Madagascar", "Malawi", "Malaysia", "Maldives", "Mali", "Malta", "Marshall Islands", "Mauritania", "Mauritius", "Mexico", "Micronesia", "Moldova", "Monaco", "Mongolia", "Montenegro", "Morocco", "Mozambique", "Myanmar",
	"Namibia", "Nauru", "Nepal", "Netherlands", "New Zealand", "Nicaragua", "Niger", "Nigeria", "North Macedonia", "Norway",
	"Oman",
	"Pakistan", "Palau", "Palestine", "Panama", "Papua New Guinea", "Paraguay", "Peru", "Philippines", "Poland", "Portugal",
	"Qatar",
	"Romania", "Russia", "Rwanda",
	"Saint Kitts and Nevis", "Saint Lucia", "Saint Vincent and the Grenadines", "Samoa", "San Marino", "Sao Tome and Principe", "Saudi Arabia", "Senegal", "Serbia", "Seychelles", "Sierra Leone", "Singapore", "Slovakia", "Slovenia", "Solomon Islands", "Somalia", "South Africa", "South Sudan", "Spain", "Sri Lanka", "Sudan", "Suriname", "Sweden", "Switzerland", "Syria",
	"Taiwan", "Tajikistan", "Tanzania", "Thailand", "Togo", "Tonga", "Trinidad and Tobago", "Tunisia", "Turkey", "Turkmenistan", "Tuvalu",
	"Uganda", "Ukraine", "United Arab Emirates", "United Kingdom", "United States", "Uruguay", "Uzbekistan",
	"Vanuatu", "Vatican City", "Venezuela", "Vietnam",
	"Yemen",
	"Zambia", "Zimbabwe",
}

// aliases maps common short or alternate spellings, lowercased, to the
// canonical name in countries.
var aliases = map[string]string{
	"usa":                                "United States",
	"us":                                 "United States",
	"u.s.":                               "United States",
	"u.s.a.":                             "United States",
	"united states of america":           "United States",
	"uk":                                 "United Kingdom",
	"u.k.":                               "United Kingdom",
	"great britain":                      "United Kingdom",
	"england":                            "United Kingdom",
	"scotland":                           "United Kingdom",
	"wales":                              "United Kingdom",
	"the netherlands":                    "Netherlands",
	"holland":                            "Netherlands",
	"uae":                                "United Arab Emirates",
	"czechia":                            "Czech Republic",
	"korea":                              "South Korea",
	"republic of korea":                  "South Korea",
	"türkiye":                            "Turkey",
	"turkiye":                            "Turkey",
	"côte d'ivoire":                      "Ivory Coast",
	"timor-leste":                        "East Timor",
	"the federated states of micronesia": "Micronesia",
}

// CanonicalCountry resolves place to the canonical country name, matching
// case-insensitively against the known countries and their aliases.
func CanonicalCountry(place string) (string, bool) {
	place = strings.TrimSpace(place)
	if place == "" {
		return "", false
	}
	for _, c := range countries {
		if strings.EqualFold(c, place) {
			return c, true
		}
	}
	if c, ok := aliases[strings.ToLower(place)]; ok {
		return c, true
	}
	return "", false
}

func IsCountry(place string) bool {
	_, ok := CanonicalCountry(place)
	return ok
}

func IdentifyPlace(place string) string {
	if IsCountry(place) {
		return "country"
	}
	return "city"
}

// ExtractCountry pulls a country out of free text such as
// "Amsterdam, Netherlands" or "Offices in Spain". Known countries are returned
// in canonical form; an unrecognised candidate is returned as written.
func ExtractCountry(text string) string {
	text = strings.TrimSpace(text)

	candidate := ""
	if idx := strings.LastIndex(text, ","); idx != -1 {
		candidate = strings.TrimSpace(text[idx+1:])
	} else {
		// Look for common prepositions
		for _, prep := range []string{" in ", " at "} {
			if idx := strings.LastIndex(strings.ToLower(text), prep); idx != -1 {
				candidate = strings.TrimSpace(text[idx+len(prep):])
				break
			}
		}
	}

	if candidate == "" {
		return ""
	}
	if c, ok := CanonicalCountry(candidate); ok {
		return c
	}
	return candidate
}
