package classify

import (
	"regexp"

	"taskforge/internal/task"
)

// defaultPatterns builds the standard scoring table. The table is
// constructed once per classifier and never mutated; order matters only for
// tie-breaking (first wins).
func defaultPatterns() []TypePattern {
	return []TypePattern{
		{
			Type: task.DocTypePRD,
			Keywords: []string{
				"product requirements", "user stories", "acceptance criteria",
				"stakeholder", "success metrics", "target audience", "mvp",
				"roadmap", "persona",
			},
			TitlePatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bproduct requirements\b`),
				regexp.MustCompile(`(?i)\bprd\b`),
			},
			SectionPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^#+\s*(goals?|objectives?)\b`),
				regexp.MustCompile(`(?i)^#+\s*user stor(y|ies)\b`),
				regexp.MustCompile(`(?i)^#+\s*(functional )?requirements\b`),
				regexp.MustCompile(`(?i)^#+\s*success metrics\b`),
				regexp.MustCompile(`(?i)^#+\s*(scope|out of scope)\b`),
			},
		},
		{
			Type: task.DocTypeUXSpec,
			Keywords: []string{
				"wireframe", "user flow", "interaction", "usability",
				"prototype", "navigation", "breakpoint", "accessibility",
				"screen",
			},
			TitlePatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bux spec\b`),
				regexp.MustCompile(`(?i)\b(ui|design) spec\b`),
			},
			SectionPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^#+\s*screens?\b`),
				regexp.MustCompile(`(?i)^#+\s*(user )?flows?\b`),
				regexp.MustCompile(`(?i)^#+\s*interactions?\b`),
				regexp.MustCompile(`(?i)^#+\s*accessibility\b`),
			},
		},
		{
			Type: task.DocTypeSDD,
			Keywords: []string{
				"software design", "sequence diagram", "class diagram",
				"data model", "module", "interface", "component",
			},
			TitlePatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bsoftware design\b`),
				regexp.MustCompile(`(?i)\bsdd\b`),
			},
			SectionPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^#+\s*architecture\b`),
				regexp.MustCompile(`(?i)^#+\s*components?\b`),
				regexp.MustCompile(`(?i)^#+\s*data model\b`),
				regexp.MustCompile(`(?i)^#+\s*interfaces?\b`),
			},
		},
		{
			Type: task.DocTypeTechSpec,
			Keywords: []string{
				"technical spec", "implementation", "endpoint", "schema",
				"protocol", "dependency", "api", "migration",
			},
			TitlePatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\btech(nical)? spec\b`),
				regexp.MustCompile(`(?i)\barchitecture\b`),
			},
			SectionPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^#+\s*api\b`),
				regexp.MustCompile(`(?i)^#+\s*schema\b`),
				regexp.MustCompile(`(?i)^#+\s*implementation\b`),
				regexp.MustCompile(`(?i)^#+\s*error handling\b`),
			},
		},
		{
			Type: task.DocTypeInfraSpec,
			Keywords: []string{
				"deployment", "kubernetes", "terraform", "scaling",
				"monitoring", "cluster", "provisioning", "infrastructure",
				"availability",
			},
			TitlePatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\binfra(structure)? spec\b`),
				regexp.MustCompile(`(?i)\bdeployment plan\b`),
			},
			SectionPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^#+\s*deployment\b`),
				regexp.MustCompile(`(?i)^#+\s*scaling\b`),
				regexp.MustCompile(`(?i)^#+\s*monitoring\b`),
				regexp.MustCompile(`(?i)^#+\s*disaster recovery\b`),
			},
		},
		{
			Type: task.DocTypeDesignSystem,
			Keywords: []string{
				"design token", "typography", "color palette", "spacing",
				"component library", "theme", "iconography",
			},
			TitlePatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bdesign system\b`),
				regexp.MustCompile(`(?i)\bstyle guide\b`),
			},
			SectionPatterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^#+\s*tokens?\b`),
				regexp.MustCompile(`(?i)^#+\s*typography\b`),
				regexp.MustCompile(`(?i)^#+\s*colors?\b`),
				regexp.MustCompile(`(?i)^#+\s*components?\b`),
			},
		},
	}
}
