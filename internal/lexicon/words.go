package lexicon

// Default word lists. All lists are package-private slices copied into immutable
// sets at store construction; nothing hands out the backing arrays.

// stopWords is the standard english stop word list (nltk)
var stopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "yourself", "yourselves", "he", "him", "his", "himself", "she",
	"her", "hers", "herself", "it", "its", "itself", "they", "them", "their",
	"theirs", "themselves", "what", "which", "who", "whom", "this", "that",
	"these", "those", "am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing", "a", "an",
	"the", "and", "but", "if", "or", "because", "as", "until", "while", "of",
	"at", "by", "for", "with", "about", "against", "between", "into", "through",
	"during", "before", "after", "above", "below", "to", "from", "up", "down",
	"in", "out", "on", "off", "over", "under", "again", "further", "then",
	"once", "here", "there", "when", "where", "why", "how", "all", "any",
	"both", "each", "few", "more", "most", "other", "some", "such", "no",
	"nor", "not", "only", "own", "same", "so", "than", "too", "very", "can",
	"will", "just", "should", "now",
}

// maleWords and femaleWords are the default gender lexicons
var maleWords = []string{
	"he", "son", "his", "him", "father", "man", "boy", "himself", "male",
	"brother", "sons", "fathers", "men", "boys", "males", "brothers", "uncle",
	"uncles", "nephew", "nephews", "gentleman", "gentlemen", "grandfather",
	"grandfathers",
}

var femaleWords = []string{
	"she", "daughter", "hers", "her", "mother", "woman", "girl", "herself",
	"female", "sister", "daughters", "mothers", "women", "girls", "females",
	"sisters", "aunt", "aunts", "niece", "nieces", "lady", "ladies",
	"grandmother", "grandmothers",
}

// adjectiveWords is the default stereotype target list for the adjective category
var adjectiveWords = []string{
	"active", "adventurous", "aggressive", "ambitious", "arrogant", "assertive",
	"bossy", "brilliant", "caring", "cheerful", "childish", "clever", "cold",
	"compassionate", "competitive", "confident", "dedicated", "dependent",
	"determined", "dominant", "emotional", "fearful", "forceful", "gentle",
	"gullible", "hysterical", "independent", "intelligent", "irrational",
	"logical", "modest", "nagging", "nurturing", "passive", "pleasant",
	"rational", "sensitive", "stubborn", "submissive", "supportive",
	"sympathetic", "talkative", "tender", "tough", "warm", "weak",
}

// professionWords is the default stereotype target list for the profession category
var professionWords = []string{
	"accountant", "architect", "artist", "attorney", "banker", "broker",
	"carpenter", "cashier", "chef", "clerk", "dancer", "dentist", "doctor",
	"driver", "engineer", "farmer", "firefighter", "guard", "hairdresser",
	"housekeeper", "janitor", "journalist", "judge", "lawyer", "librarian",
	"manager", "mechanic", "midwife", "nanny", "nurse", "officer", "painter",
	"pharmacist", "physician", "pilot", "plumber", "professor", "programmer",
	"receptionist", "scientist", "secretary", "soldier", "surgeon", "tailor",
	"teacher", "therapist", "waiter", "waitress", "writer",
}
