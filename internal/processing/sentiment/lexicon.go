package sentiment

// valence holds the sentiment lexicon: word to mean valence rating on the
// -4..4 scale. This is a compact excerpt of the full VADER lexicon covering
// the vocabulary that dominates short free-text classroom answers.
var valence = map[string]float64{
	"abandon": -1.9, "abuse": -3.2, "accomplish": 1.8, "active": 1.4,
	"admire": 2.4, "adore": 2.9, "afraid": -2.2, "aggressive": -1.5,
	"agree": 1.5, "alone": -1.4, "amazing": 2.8, "amused": 1.7,
	"anger": -2.7, "angry": -2.3, "annoying": -1.7, "anxious": -1.9,
	"appreciate": 2.0, "attack": -2.1, "awesome": 3.1, "awful": -2.9,
	"awkward": -1.1, "bad": -2.5, "beautiful": 2.9, "benefit": 1.7,
	"best": 3.2, "better": 1.9, "bored": -1.3, "boring": -1.3,
	"brilliant": 2.8, "broke": -1.4, "broken": -1.6, "calm": 1.3,
	"cannot": -1.3, "care": 2.2, "challenging": -0.4, "chaos": -2.3,
	"cheerful": 2.5, "clear": 1.6, "clever": 2.0, "comfort": 1.5,
	"complicated": -1.1, "confident": 2.2, "confused": -1.5,
	"confusing": -1.5, "cool": 1.3, "correct": 2.3, "crap": -2.3,
	"crazy": -1.4, "creative": 1.9, "damage": -2.2, "danger": -2.4,
	"dead": -3.3, "delight": 2.9, "depressed": -2.6, "desperate": -2.0,
	"destroy": -2.6, "difficult": -1.5, "dirty": -2.0, "disagree": -1.6,
	"disappointed": -2.1, "disaster": -3.1, "dislike": -1.6,
	"distracted": -1.1, "doubt": -1.5, "dull": -1.7, "dumb": -2.3,
	"easy": 1.9, "effective": 2.1, "efficient": 1.8, "elegant": 2.1,
	"encourage": 2.3, "engaging": 1.9, "enjoy": 2.2, "enjoyed": 2.3,
	"enthusiastic": 2.7, "error": -1.6, "evil": -3.4, "excellent": 2.7,
	"excited": 2.4, "exciting": 2.2, "exhausted": -1.9, "fail": -2.5,
	"failed": -2.3, "failure": -2.6, "fair": 1.7, "fantastic": 2.6,
	"fast": 0.4, "fear": -2.2, "fine": 0.8, "fired": -2.6, "fool": -1.9,
	"free": 1.8, "fresh": 1.3, "friendly": 2.2, "frustrated": -2.1,
	"fun": 2.3, "funny": 1.9, "genius": 2.8, "glad": 2.0, "good": 1.9,
	"grateful": 2.6, "great": 3.1, "happy": 2.7, "hard": -0.4,
	"harm": -2.5, "hate": -2.7, "hated": -3.2, "hell": -3.6,
	"helpful": 1.8, "helps": 1.6, "honest": 2.3, "hope": 1.9,
	"hopeless": -2.5, "horrible": -2.5, "hurt": -2.4, "ignore": -1.5,
	"impressed": 2.1, "improve": 1.9, "improvement": 1.9,
	"inspiring": 2.5, "insult": -2.3, "interested": 2.0,
	"interesting": 1.7, "irrelevant": -1.3, "joy": 2.8, "kill": -3.7,
	"kind": 2.4, "lame": -1.8, "lazy": -1.7, "learn": 1.4,
	"like": 1.5, "liked": 1.8, "lonely": -1.9, "lose": -1.6,
	"lost": -1.3, "love": 3.2, "loved": 2.9, "lovely": 2.8,
	"lucky": 1.8, "mad": -2.2, "mess": -1.9, "messy": -1.5,
	"miss": -0.8, "missing": -1.1, "mistake": -1.7, "motivated": 2.1,
	"negative": -1.8, "nervous": -1.6, "nice": 1.8, "noisy": -1.2,
	"ok": 1.2, "okay": 0.9, "optimistic": 2.2, "pain": -2.5,
	"painful": -2.4, "panic": -2.3, "perfect": 2.7, "pleasant": 2.3,
	"pleased": 2.1, "poor": -2.1, "positive": 2.4, "powerful": 1.7,
	"problem": -1.7, "problems": -1.7, "proud": 2.1, "relaxed": 1.9,
	"relevant": 1.2, "rich": 2.0, "right": 1.7, "sad": -2.1,
	"scared": -2.2, "sick": -1.9, "slow": -1.0, "smart": 1.8,
	"smooth": 1.3, "solid": 1.3, "sorry": -0.3, "strange": -1.2,
	"stress": -1.8, "stressed": -1.9, "stressful": -2.1,
	"strong": 2.3, "struggle": -1.8, "struggling": -1.9,
	"stuck": -1.5, "stupid": -2.4, "succeed": 2.4, "success": 2.7,
	"suck": -2.1, "sucks": -1.9, "super": 2.9, "support": 1.7,
	"terrible": -2.1, "terrific": 2.7, "thank": 1.9, "thanks": 1.9,
	"tired": -1.3, "tough": -1.1, "trust": 2.1, "ugly": -2.5,
	"unclear": -1.4, "uncomfortable": -1.6, "understand": 1.3,
	"unfair": -2.3, "unhappy": -2.2, "unsure": -1.0, "upset": -1.9,
	"useful": 1.9, "useless": -1.9, "valuable": 2.1, "value": 1.5,
	"waste": -2.0, "weak": -1.9, "weird": -0.9, "welcome": 2.0,
	"well": 1.1, "wonderful": 2.7, "worry": -1.9, "worse": -2.1,
	"worst": -3.1, "worthless": -2.7, "wow": 2.8, "wrong": -2.1,
	"yes": 1.7,
}

// negators invert the valence of the following sentiment-bearing word.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "neither": {}, "nobody": {},
	"none": {}, "nothing": {}, "nowhere": {}, "cant": {}, "cannot": {},
	"dont": {}, "doesnt": {}, "didnt": {}, "wont": {}, "wasnt": {},
	"isnt": {}, "arent": {}, "aint": {}, "without": {}, "hardly": {},
	"barely": {},
}

// boosters scale the valence of the following sentiment-bearing word.
var boosters = map[string]float64{
	"absolutely": 0.293, "completely": 0.293, "considerably": 0.293,
	"decidedly": 0.293, "deeply": 0.293, "enormously": 0.293,
	"especially": 0.293, "exceptionally": 0.293, "extremely": 0.293,
	"hugely": 0.293, "incredibly": 0.293, "really": 0.267,
	"remarkably": 0.293, "so": 0.293, "totally": 0.293, "very": 0.293,
	"almost": -0.293, "kind": -0.293, "kinda": -0.293, "less": -0.293,
	"little": -0.293, "marginally": -0.293, "partly": -0.293,
	"slightly": -0.293, "somewhat": -0.293, "sort": -0.293,
	"sorta": -0.293,
}
