package keywords

// synonyms maps spelling variants to a canonical skill. Every canonical
// value is also a key mapping to itself, which keeps Normalize idempotent.
// Only single-token keys are listed since Tokenize never yields dots,
// dashes or spaces.
var synonyms = map[string]string{
	"js":         "javascript",
	"javascript": "javascript",
	"ecmascript": "javascript",
	"ts":         "typescript",
	"typescript": "typescript",

	"python":  "python",
	"python3": "python",
	"py":      "python",

	"postgresql": "postgresql",
	"postgres":   "postgresql",
	"psql":       "postgresql",
	"mysql":      "mysql",
	"mongodb":    "mongodb",
	"mongo":      "mongodb",
	"sql":        "sql",
	"nosql":      "nosql",
	"database":   "database",
	"db":         "database",

	"react":     "react",
	"reactjs":   "react",
	"vue":       "vue",
	"vuejs":     "vue",
	"angular":   "angular",
	"angularjs": "angular",

	"django":    "django",
	"flask":     "flask",
	"fastapi":   "fastapi",
	"express":   "express",
	"expressjs": "express",
	"nodejs":    "nodejs",
	"node":      "nodejs",

	"aws":    "aws",
	"amazon": "aws",
	"ec2":    "aws",
	"s3":     "aws",
	"azure":  "azure",
	"gcp":    "gcp",
	"heroku": "heroku",

	"docker":     "docker",
	"kubernetes": "kubernetes",
	"k8s":        "kubernetes",
	"git":        "git",
	"github":     "git",
	"gitlab":     "git",
	"ci":         "cicd",
	"cd":         "cicd",
	"cicd":       "cicd",
	"jenkins":    "jenkins",

	"api":     "api",
	"apis":    "api",
	"rest":    "rest",
	"restful": "rest",
	"graphql": "graphql",

	"testing": "testing",
	"test":    "testing",
	"tdd":     "testing",
	"pytest":  "testing",
	"jest":    "testing",

	"agile":     "agile",
	"scrum":     "agile",
	"frontend":  "frontend",
	"backend":   "backend",
	"fullstack": "fullstack",
}

// Normalize returns the canonical skill for token, or token itself when it
// has no known variants.
func Normalize(token string) string {
	if canonical, ok := synonyms[token]; ok {
		return canonical
	}
	return token
}

func NormalizeTokens(tokens []string) []string {
	normalized := make([]string, len(tokens))
	for i, token := range tokens {
		normalized[i] = Normalize(token)
	}
	return normalized
}
