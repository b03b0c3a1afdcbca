package source

import (
	"regexp"
	"strings"
)

// defaultCategory is assigned when no keyword matches.
const defaultCategory = "Other"

// categoryKeywords maps each fallback category to the keywords that signal it.
// Keywords match on word boundaries so "ham" does not fire on "shampoo".
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"Produce", []string{
		"apple", "banana", "orange", "grape", "berry", "strawberry", "blueberry", "raspberry",
		"lettuce", "spinach", "kale", "carrot", "potato", "onion", "tomato", "cucumber",
		"pepper", "broccoli", "cauliflower", "celery", "avocado", "lemon", "lime",
		"peach", "pear", "plum", "cherry", "melon", "watermelon", "cantaloupe",
		"cabbage", "zucchini", "squash", "mushroom", "garlic", "ginger", "herbs",
		"salad", "organic", "fresh", "produce", "fruit", "vegetable", "veggie",
	}},
	{"Meat", []string{
		"chicken", "beef", "pork", "turkey", "lamb", "fish", "salmon", "tuna",
		"ground", "steak", "roast", "chops", "wings", "thighs", "breast",
		"bacon", "ham", "sausage", "deli", "meat", "protein", "fresh meat",
		"ribeye", "sirloin", "tenderloin", "brisket", "ribs", "drumstick",
	}},
	{"Dairy", []string{
		"milk", "cheese", "yogurt", "butter", "cream", "sour cream", "cottage cheese",
		"cheddar", "mozzarella", "parmesan", "swiss", "brie", "goat cheese",
		"ice cream", "frozen yogurt", "dairy", "lactose", "organic milk",
		"almond milk", "oat milk", "coconut milk", "eggs", "egg",
	}},
	{"Bakery", []string{
		"bread", "buns", "rolls", "bagels", "muffins", "croissant", "pastry",
		"cake", "cookies", "pie", "tart", "donut", "danish", "scone",
		"bakery", "fresh baked", "artisan", "sourdough", "whole grain",
		"gluten free", "baguette", "focaccia", "pretzel",
	}},
	{"Frozen", []string{
		"frozen", "ice cream", "frozen yogurt", "frozen fruit", "frozen vegetables",
		"frozen meals", "frozen pizza", "frozen chicken", "frozen fish",
		"ice", "popsicle", "sorbet", "gelato", "frozen berries", "frozen peas",
	}},
	{"Pantry", []string{
		"pasta", "rice", "beans", "lentils", "quinoa", "oats", "cereal",
		"flour", "sugar", "salt", "pepper", "spices", "oil", "vinegar",
		"sauce", "dressing", "condiment", "canned", "jarred", "dried",
		"nuts", "seeds", "honey", "syrup", "jam", "jelly", "peanut butter",
	}},
	{"Snacks", []string{
		"chips", "crackers", "popcorn", "pretzels", "nuts", "trail mix",
		"granola", "energy bar", "protein bar", "candy", "chocolate",
		"gum", "mints", "cookies", "snack", "treats", "jerky",
	}},
	{"Beverages", []string{
		"water", "juice", "soda", "pop", "coffee", "tea", "energy drink",
		"sports drink", "kombucha", "smoothie", "beer", "wine", "alcohol",
		"sparkling", "coconut water", "drink", "beverage", "bottle", "can",
	}},
	{"Health & Beauty", []string{
		"shampoo", "conditioner", "soap", "lotion", "cream", "deodorant",
		"toothpaste", "toothbrush", "vitamins", "supplements", "medicine",
		"bandages", "first aid", "beauty", "cosmetics", "skincare", "haircare",
	}},
	{"Pet Food", []string{
		"dog food", "cat food", "pet food", "dog treats", "cat treats",
		"pet treats", "dog", "cat", "pet", "kibble", "wet food", "dry food",
	}},
}

var categoryPatterns = compileCategoryPatterns()

func compileCategoryPatterns() []struct {
	name     string
	patterns []*regexp.Regexp
} {
	compiled := make([]struct {
		name     string
		patterns []*regexp.Regexp
	}, 0, len(categoryKeywords))

	for _, cat := range categoryKeywords {
		patterns := make([]*regexp.Regexp, 0, len(cat.keywords))
		for _, kw := range cat.keywords {
			patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		compiled = append(compiled, struct {
			name     string
			patterns []*regexp.Regexp
		}{name: cat.name, patterns: patterns})
	}

	return compiled
}

// DetectCategory infers a category from the item's name and description by
// keyword scoring. The highest scoring category wins; ties break in the
// declaration order above. With no match at all the item lands in "Other".
func DetectCategory(name, description string) string {
	text := strings.ToLower(name)
	if description != "" {
		text += " " + strings.ToLower(description)
	}

	best := defaultCategory
	bestScore := 0
	for _, cat := range categoryPatterns {
		score := 0
		for _, pattern := range cat.patterns {
			score += len(pattern.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			best = cat.name
			bestScore = score
		}
	}

	return best
}
