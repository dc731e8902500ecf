package core

import "strings"

// DefaultCategory is returned when no keyword rule matches.
const DefaultCategory = "general"

// topicRules is the classifier's fixed priority table: first match wins.
// Frontend is checked before java so that "javascript" never falls into the
// java bucket.
var topicRules = []struct {
	category string
	keywords []string
}{
	{"python", []string{"python", "питон", "django", "flask"}},
	{"frontend", []string{"javascript", "джаваскрипт", "typescript", "фронтенд", "фронт-енд", "react", "реакт", "vue", "верстк", "css", "html"}},
	{"java", []string{"java", "джав", "spring", "котлин", "kotlin"}},
	{"golang", []string{"golang", "го-разработ", "горутин"}},
	{"sql", []string{"sql", "база данных", "базы данных", "баз данных", "postgres", "субд"}},
	{"product_manager", []string{"продакт", "product", "менеджер продукта", "продуктов"}},
	{"marketing", []string{"маркетинг", "marketing", "смм", "smm", "реклам"}},
	{"hr", []string{"hr", "эйчар", "софт-скилл", "soft skill", "поведенческ", "behavior"}},
}

// Categories is the closed vocabulary the classifier can produce. The dataset
// importer checks file-name categories against it so the keyword table and
// the stored taxonomy cannot silently diverge.
var Categories = buildCategories()

func buildCategories() map[string]bool {
	cats := map[string]bool{DefaultCategory: true}
	for _, rule := range topicRules {
		cats[rule.category] = true
	}
	return cats
}

// KnownCategory reports whether the classifier can ever produce cat.
func KnownCategory(cat string) bool {
	return Categories[strings.ToLower(cat)]
}

// ClassifyTopic maps an utterance to one category by substring matching.
// Pure and deterministic: the same text always yields the same category.
// This is a heuristic, not a model; misses land in "general".
func ClassifyTopic(text string) string {
	text = strings.ToLower(text)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return DefaultCategory
}
