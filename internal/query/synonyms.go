package query

// CategorySynonym maps free-text keywords to a canonical product category.
type CategorySynonym struct {
	Category string
	Keywords []string
}

// Categories is checked in order and the first category with a matching
// keyword wins. Keywords are matched as whole words, so plurals are listed
// explicitly.
var Categories = []CategorySynonym{
	{
		Category: "Lodging",
		Keywords: []string{
			"hotel", "hotels", "guesthouse", "guesthouses", "guest house", "guest houses",
			"lodge", "lodges", "b&b", "bnb", "bed and breakfast", "accommodation",
			"accommodations", "stay", "stays", "place to stay", "resort", "resorts",
			"hostel", "hostels", "apartment", "apartments", "villa", "villas",
			"chalet", "chalets", "camp", "camps", "campsite", "self catering", "self-catering",
		},
	},
	{
		Category: "Tour",
		Keywords: []string{
			"tour", "tours", "safari", "safaris", "game drive", "game drives",
			"excursion", "excursions", "day trip", "day trips", "guided", "sightseeing",
			"walking tour", "wine tour", "wine tasting",
		},
	},
	{
		Category: "Activity",
		Keywords: []string{
			"activity", "activities", "things to do", "adventure", "adventures",
			"bungee", "hike", "hikes", "hiking", "diving", "snorkelling", "snorkeling",
			"surfing", "surf lessons", "cruise", "cruises", "zipline", "kayaking",
		},
	},
	{
		Category: "Transport",
		Keywords: []string{
			"transport", "transfer", "transfers", "shuttle", "shuttles", "car hire",
			"car rental", "rental car", "taxi", "flight", "flights", "bus", "train",
		},
	},
	{
		Category: "Dining",
		Keywords: []string{
			"restaurant", "restaurants", "dining", "dinner", "lunch", "breakfast",
			"food", "eat", "eats", "braai", "cafe", "cafes",
		},
	},
}

// DetectCategory returns the first category whose keyword appears in text,
// or "" when none does.
func DetectCategory(text string) string {
	t := normalizeText(text)
	if t == "" {
		return ""
	}
	for _, syn := range Categories {
		for _, kw := range syn.Keywords {
			if containsPhrase(t, kw) {
				return syn.Category
			}
		}
	}
	return ""
}
