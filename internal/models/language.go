package models

// Language is an entry of the supported language catalogs
type Language struct {
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Native string `json:"native" yaml:"native"`
}

var sourceLanguages = []Language{
	{Code: "hi", Name: "Hindi", Native: "हिन्दी"},
	{Code: "en", Name: "English", Native: "English"},
	{Code: "bn", Name: "Bengali", Native: "বাংলা"},
	{Code: "mr", Name: "Marathi", Native: "मराठी"},
	{Code: "ta", Name: "Tamil", Native: "தமிழ்"},
	{Code: "te", Name: "Telugu", Native: "తెలుగు"},
	{Code: "es", Name: "Spanish", Native: "Español"},
	{Code: "fr", Name: "French", Native: "Français"},
	{Code: "ar", Name: "Arabic", Native: "العربية"},
	{Code: "de", Name: "German", Native: "Deutsch"},
}

var targetLanguages = []Language{
	{Code: "en", Name: "English", Native: "English"},
	{Code: "hi", Name: "Hindi", Native: "हिन्दी"},
	{Code: "es", Name: "Spanish", Native: "Español"},
	{Code: "fr", Name: "French", Native: "Français"},
	{Code: "de", Name: "German", Native: "Deutsch"},
}

func SourceLanguages() []Language {
	return append([]Language(nil), sourceLanguages...)
}

func TargetLanguages() []Language {
	return append([]Language(nil), targetLanguages...)
}

// LookupSource finds a source language by code, defaulting to the first catalog entry
func LookupSource(code string) Language {
	return lookup(sourceLanguages, code)
}

// LookupTarget finds a target language by code, defaulting to the first catalog entry
func LookupTarget(code string) Language {
	return lookup(targetLanguages, code)
}

// SourceByName resolves an archived display name back to a catalog entry
func SourceByName(name string) (Language, bool) {
	return byName(sourceLanguages, name)
}

func TargetByName(name string) (Language, bool) {
	return byName(targetLanguages, name)
}

func lookup(catalog []Language, code string) Language {
	for _, l := range catalog {
		if l.Code == code {
			return l
		}
	}
	return catalog[0]
}

func byName(catalog []Language, name string) (Language, bool) {
	for _, l := range catalog {
		if l.Name == name {
			return l, true
		}
	}
	return Language{}, false
}
