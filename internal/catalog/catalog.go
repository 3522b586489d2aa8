package catalog

import (
	"fmt"
	"strings"
)

// InsuranceProduct is one entry of the static product catalog.
type InsuranceProduct struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Provider     string   `json:"provider"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	MonthlyPrice float64  `json:"monthlyPrice"`
	Rating       float64  `json:"rating"`
}

var products = []InsuranceProduct{
	{
		ID:          "ins-001",
		Name:        "Privathaftpflicht Komfort",
		Type:        "Haftpflicht",
		Provider:    "Nordstern Versicherung",
		Description: "Schützt Sie vor Schadensersatzansprüchen Dritter im Alltag.",
		Features: []string{
			"Deckungssumme 50 Mio. €",
			"Schlüsselverlust mitversichert",
			"Forderungsausfalldeckung",
		},
		MonthlyPrice: 4.90,
		Rating:       4.7,
	},
	{
		ID:          "ins-002",
		Name:        "Hausrat Premium",
		Type:        "Hausrat",
		Provider:    "Hanse Assekuranz",
		Description: "Versichert Ihr Hab und Gut gegen Feuer, Einbruchdiebstahl, Leitungswasser und Sturm.",
		Features: []string{
			"Fahrraddiebstahl bis 5.000 €",
			"Elementarschäden optional",
			"Neuwertentschädigung",
		},
		MonthlyPrice: 8.50,
		Rating:       4.5,
	},
	{
		ID:          "ins-003",
		Name:        "Kfz-Vollkasko Smart",
		Type:        "Kfz",
		Provider:    "Alpen Direkt",
		Description: "Umfassender Schutz für Ihr Fahrzeug inklusive selbst verschuldeter Unfallschäden.",
		Features: []string{
			"Werkstattservice",
			"Rabattschutz",
			"Neupreisentschädigung 24 Monate",
		},
		MonthlyPrice: 42.30,
		Rating:       4.2,
	},
	{
		ID:          "ins-004",
		Name:        "Berufsunfähigkeit Vital",
		Type:        "Berufsunfähigkeit",
		Provider:    "Nordstern Versicherung",
		Description: "Monatliche Rente, wenn Sie Ihren Beruf aus gesundheitlichen Gründen nicht mehr ausüben können.",
		Features: []string{
			"Verzicht auf abstrakte Verweisung",
			"Nachversicherungsgarantie",
			"Weltweiter Schutz",
		},
		MonthlyPrice: 67.80,
		Rating:       4.8,
	},
	{
		ID:          "ins-005",
		Name:        "Zahnzusatz Dental Plus",
		Type:        "Zahnzusatz",
		Provider:    "Medica Dental",
		Description: "Erstattung für Zahnersatz, Implantate und professionelle Zahnreinigung.",
		Features: []string{
			"90 % Erstattung bei Zahnersatz",
			"2 Zahnreinigungen pro Jahr",
			"Keine Wartezeit",
		},
		MonthlyPrice: 19.90,
		Rating:       4.6,
	},
}

// Products returns a copy of the full catalog in catalog order.
func Products() []InsuranceProduct {
	out := make([]InsuranceProduct, len(products))
	for i, p := range products {
		out[i] = p.clone()
	}
	return out
}

// Types returns the distinct product types in catalog order.
func Types() []string {
	seen := make(map[string]bool, len(products))
	var types []string
	for _, p := range products {
		if !seen[p.Type] {
			seen[p.Type] = true
			types = append(types, p.Type)
		}
	}
	return types
}

// Search returns every product whose name, description, type or any feature
// contains query case-insensitively. A non-empty productType additionally
// requires an exact case-insensitive match on the product type.
func Search(query, productType string) []InsuranceProduct {
	q := strings.ToLower(query)
	results := make([]InsuranceProduct, 0, len(products))
	for _, p := range products {
		if productType != "" && !strings.EqualFold(p.Type, productType) {
			continue
		}
		if p.matches(q) {
			results = append(results, p.clone())
		}
	}
	return results
}

func (p InsuranceProduct) matches(lowerQuery string) bool {
	if strings.Contains(strings.ToLower(p.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Description), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Type), lowerQuery) {
		return true
	}
	for _, f := range p.Features {
		if strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

func (p InsuranceProduct) clone() InsuranceProduct {
	p.Features = append([]string(nil), p.Features...)
	return p
}

// IDs returns the product IDs of ps in order.
func IDs(ps []InsuranceProduct) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}

// Summary renders the German result sentence shown alongside search results.
func Summary(count int, query string) string {
	noun := "Produkte"
	if count == 1 {
		noun = "Produkt"
	}
	return fmt.Sprintf("%d %s für %q gefunden.", count, noun, query)
}
