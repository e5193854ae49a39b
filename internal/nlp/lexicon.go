package nlp

var defaultLexicon = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "awesome": 1.0, "amazing": 0.6, "excellent": 1.0,
	"love": 0.5, "loved": 0.7, "loving": 0.6, "best": 1.0, "better": 0.5,
	"nice": 0.6, "cool": 0.35, "fantastic": 0.4, "wonderful": 1.0, "perfect": 1.0,
	"beautiful": 0.85, "brilliant": 0.9, "helpful": 0.6, "useful": 0.3, "fun": 0.3,
	"funny": 0.25, "happy": 0.8, "glad": 0.5, "thanks": 0.2, "thank": 0.2,
	"incredible": 0.9, "impressive": 1.0, "insane": 0.3, "legendary": 0.7, "epic": 0.6,
	"favorite": 0.5, "favourite": 0.5, "enjoy": 0.4, "enjoyed": 0.5, "interesting": 0.5,
	"clear": 0.1, "easy": 0.43, "recommend": 0.4, "wow": 0.1, "goat": 0.5,
	"fire": 0.3, "underrated": 0.4, "genius": 0.8, "inspiring": 0.6, "satisfying": 0.5,
	"super": 0.33, "win": 0.8, "works": 0.2, "informative": 0.6, "hilarious": 0.6,

	// negative
	"bad": -0.7, "terrible": -1.0, "awful": -1.0, "horrible": -1.0, "worst": -1.0,
	"worse": -0.4, "hate": -0.8, "hated": -0.9, "boring": -1.0, "stupid": -0.8,
	"useless": -0.5, "waste": -0.2, "wrong": -0.5, "annoying": -0.8, "sad": -0.5,
	"disappointing": -0.6, "disappointed": -0.75, "fake": -0.5, "scam": -0.8, "clickbait": -0.6,
	"poor": -0.4, "broken": -0.4, "ugly": -0.7, "dumb": -0.375, "lame": -0.5,
	"trash": -0.8, "garbage": -0.8, "cringe": -0.6, "misleading": -0.6, "confusing": -0.3,
	"hard": -0.3, "fail": -0.5, "failed": -0.5, "angry": -0.5, "mad": -0.6,
	"overrated": -0.5, "slow": -0.3, "sucks": -0.7, "problem": -0.2, "issue": -0.1,
}

var defaultNegations = map[string]bool{
	"not": true, "no": true, "never": true, "dont": true, "don't": true,
	"doesnt": true, "doesn't": true, "isnt": true, "isn't": true, "wasnt": true,
	"wasn't": true, "cant": true, "can't": true, "wont": true, "won't": true,
	"aint": true, "ain't": true, "nothing": true,
}

var defaultIntensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.3, "extremely": 1.5, "super": 1.3,
	"absolutely": 1.5, "totally": 1.3, "incredibly": 1.5, "pretty": 1.1,
}

var stopwords = map[string]bool{}

func init() {
	for _, w := range stopwordList {
		stopwords[w] = true
	}
}

func isStopword(tok string) bool {
	return stopwords[tok]
}

var stopwordList = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "can't", "cannot", "could",
	"couldn't", "did", "didn't", "do", "does", "doesn't", "doing", "don't", "down", "during",
	"each", "even", "ever", "every", "few", "for", "from", "further", "get", "got",
	"had", "hadn't", "has", "hasn't", "have", "haven't", "having", "he", "her", "here",
	"hers", "herself", "him", "himself", "his", "how", "i", "i'm", "i've", "if",
	"in", "into", "is", "isn't", "it", "it's", "its", "itself", "just", "let's",
	"like", "me", "more", "most", "much", "my", "myself", "no", "nor", "not",
	"now", "of", "off", "on", "once", "only", "or", "other", "our", "ours",
	"ourselves", "out", "over", "own", "really", "same", "she", "should", "so", "some",
	"still", "such", "than", "that", "that's", "the", "their", "theirs", "them", "themselves",
	"then", "there", "there's", "these", "they", "they're", "this", "those", "through", "to",
	"too", "under", "until", "up", "us", "very", "was", "wasn't", "we", "were",
	"weren't", "what", "what's", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "won't", "would", "wouldn't", "you", "you're", "you've", "your", "yours",
	"yourself", "yourselves", "im", "dont", "lol", "yeah", "one", "make", "know", "see",
	"go", "going", "thing", "things", "way", "lot", "want", "need", "say", "said",
}
