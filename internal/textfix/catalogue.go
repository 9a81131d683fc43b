package textfix

import "strings"

// AmericanToBritish maps American spellings to their British forms.
var AmericanToBritish = map[string]string{
	"color": "colour", "colors": "colours", "colored": "coloured", "coloring": "colouring",
	"center": "centre", "centers": "centres", "centered": "centred",
	"analyze": "analyse", "analyzes": "analyses", "analyzed": "analysed", "analyzing": "analysing",
	"organization": "organisation", "organizations": "organisations",
	"organize": "organise", "organizes": "organises", "organized": "organised", "organizing": "organising",
	"aluminum": "aluminium",
	"license":  "licence",
	"harbor":   "harbour", "harbors": "harbours",
	"finalize": "finalise", "finalizes": "finalises", "finalized": "finalised", "finalizing": "finalising",
	"labor":    "labour",
	"catalog":  "catalogue", "catalogs": "catalogues",
	"defense":  "defence",
	"minimize": "minimise", "minimizes": "minimises", "minimized": "minimised", "minimizing": "minimising",
	"utilize":  "utilise", "utilizes": "utilises", "utilized": "utilised", "utilizing": "utilising",
	"fiber":    "fibre", "fibers": "fibres",
	"theater":  "theatre", "theaters": "theatres",
}

// Contractions maps contracted forms to their expansions.
var Contractions = map[string]string{
	"can't": "cannot", "couldn't": "could not", "didn't": "did not",
	"don't": "do not", "doesn't": "does not", "hasn't": "has not",
	"haven't": "have not", "isn't": "is not", "shouldn't": "should not",
	"won't": "will not", "wouldn't": "would not", "aren't": "are not",
	"wasn't": "was not", "weren't": "were not",
	"we're": "we are", "they're": "they are", "you're": "you are",
	"it's": "it is", "that's": "that is", "there's": "there is",
	"could've": "could have", "should've": "should have", "would've": "would have",
}

// ResolveAmerican returns the American spelling named by key. The key may be
// the American word itself or its British form; an unknown key is returned
// unchanged.
func ResolveAmerican(key string) string {
	k := strings.ToLower(key)
	if _, ok := AmericanToBritish[k]; ok {
		return k
	}
	for us, uk := range AmericanToBritish {
		if uk == k {
			return us
		}
	}
	return key
}

// BritishFor returns the British form of an American word, or "" when the
// word is not catalogued.
func BritishFor(american string) string {
	return AmericanToBritish[strings.ToLower(american)]
}

// ResolveContraction returns the contraction named by key, where key is the
// contraction with its apostrophe removed ("cant" names "can't"). A key that
// is already a catalogued contraction, or is unknown, is returned unchanged.
func ResolveContraction(key string) string {
	if _, ok := Contractions[key]; ok {
		return key
	}
	for c := range Contractions {
		if strings.ReplaceAll(c, "'", "") == key {
			return c
		}
	}
	return key
}
