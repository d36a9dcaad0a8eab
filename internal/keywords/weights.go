package keywords

// Tier is the importance multiplier of a canonical skill.
type Tier int

const (
	TierLow    Tier = 1
	TierMedium Tier = 2
	TierHigh   Tier = 3
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// Languages, frameworks, datastores and platforms.
var highPriority = toSet(
	"python", "javascript", "typescript", "java", "cpp", "csharp",
	"ruby", "php", "go", "golang", "rust", "swift", "kotlin", "scala",
	"django", "flask", "fastapi", "react", "vue", "angular", "nodejs",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"aws", "azure", "gcp", "docker", "kubernetes",
	"ml", "ai",
)

// Tools, processes and general engineering terms.
var mediumPriority = toSet(
	"git", "jenkins", "cicd", "agile",
	"rest", "api", "graphql", "microservices",
	"testing", "unit", "integration",
	"linux", "unix", "windows", "macos",
	"html", "css", "sass", "bootstrap", "tailwind",
	"sql", "nosql", "database",
	"frontend", "backend", "fullstack",
)

// TierOf classifies a canonical skill. Unlisted skills are TierLow.
func TierOf(skill string) Tier {
	if _, ok := highPriority[skill]; ok {
		return TierHigh
	}
	if _, ok := mediumPriority[skill]; ok {
		return TierMedium
	}
	return TierLow
}

// Weight is TierOf as a plain integer.
func Weight(skill string) int {
	return int(TierOf(skill))
}
