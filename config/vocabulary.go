package config

// Default vocabulary lists. These are tuned to a CRM project
// knowledge-transfer corpus and are expected to be overridden per deployment
// through the YAML file; the feature ordering derived from them must stay
// stable for as long as vectors computed with them remain stored.

var defaultKeywords = []string{
	"react", "node", "mongodb", "aws", "oauth",
	"backend", "frontend", "api", "database",
	"developer", "delay", "vendor", "approval",
	"approved", "ramesh", "iyer", "meera", "nair", "cto",
	"adoption", "metrics", "pipeline", "mobile",
	"support", "tickets", "testing", "jest",
	"security", "rbac", "encryption", "module",
	"lead", "contact", "opportunity", "email",
	"campaign", "analytics", "dashboard", "functional",
	"april", "started", "final", "release", "uat",
	"anjali", "mukherjee", "qa", "quality", "assurance",
	"vishal", "menon", "devika", "sharma", "arjun",
	"mehta", "kavya", "rathi", "neeraj", "kapoor",
	"ayesha", "khan", "priya", "deshmukh", "role",
}

var defaultBigrams = []string{
	"backend_developer", "email_campaign", "final_approval",
	"post_release", "user_adoption", "support_tickets",
	"pipeline_visibility", "mobile_usage", "tech_stack",
	"project_delayed", "technology_stack",
}

var defaultVisualKeywords = []string{
	"figure", "diagram", "image", "chart", "graph", "illustration",
}

var defaultSummaryKeywords = []string{
	"summarize", "summary", "overview", "brief", "outline", "synopsis",
	"main points", "key points", "highlights", "quick overview",
	"give me a summary", "what are the main", "overall picture",
}

var defaultDetailKeywords = []string{
	"details", "detailed", "full info", "complete section", "comprehensive",
	"in depth", "thorough", "complete details", "full description",
	"tell me everything", "all information", "complete picture",
}

var defaultNameIndicators = []string{
	"who is", "who are", "what is", "role of", "position of",
	"lead", "manager", "developer", "cto", "qa", "tester",
	"head of", "responsible for", "in charge of",
}

var defaultKnownNames = []string{
	"ramesh", "iyer", "meera", "nair", "priya", "deshmukh",
	"anjali", "mukherjee", "vishal", "menon", "devika", "sharma",
	"arjun", "mehta", "kavya", "rathi", "neeraj", "kapoor",
	"ayesha", "khan",
}

var defaultVisualIndicators = []string{
	"figure", "diagram", "image", "picture", "chart", "graph",
	"illustration", "visual", "show", "display", "screenshot",
	"drawing", "sketch", "flowchart", "architecture", "design",
	"what does", "how does", "show me", "visualize", "layout",
}

var defaultReferenceIndicators = []string{
	"who did you mention", "what did you say", "tell me more", "more about",
	"what about", "how about", "and what", "also", "additionally",
	"that person", "they", "them", "he", "she", "it", "this",
	"previous", "before", "earlier", "above", "that", "those",
}

// defaultFallbackKeywords feed the keyword fallback scan; a literal hit on
// one of these scores higher than a proper-name pattern hit.
var defaultFallbackKeywords = []string{
	"ramesh", "iyer", "meera", "nair", "priya", "deshmukh",
	"anjali", "mukherjee", "vishal", "menon", "devika", "sharma",
	"arjun", "mehta", "kavya", "rathi", "neeraj", "kapoor",
	"ayesha", "khan", "cto", "qa lead", "project manager",
	"head of operations", "developer", "tester",
}
