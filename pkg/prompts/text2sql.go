package prompts

import (
	"github.com/obstack/obtools/pkg/llms"
)

// Text2SQLSystemPrompt instructs the model to produce a single executable
// MySQL-dialect query.
const Text2SQLSystemPrompt = `You are a MySQL expert. Your task is to generate an executable query for MySQL based on a user's question.

Requirements:
1. Generate a complete, executable query that can be run directly
2. Query only necessary columns
3. Don't wrap column names in double quotes (") as delimited identifiers
4. Unless specified, limit results to 5 rows
5. Use date('now') for current date references
6. The response format should not include special characters like ` + "```" + `, \n, \", etc.

Query Guidelines:
- Ensure the query matches MySQL syntax
- Only use columns that exist in the provided tables
- Add appropriate table joins with correct join conditions
- Include WHERE clauses to filter data as needed
- Add ORDER BY when sorting is beneficial
- Use appropriate data type casting

Common Pitfalls to Avoid:
- NULL handling in NOT IN clauses
- UNION vs UNION ALL usage
- Exclusive range conditions
- Data type mismatches
- Missing or incorrect quotes around identifiers
- Wrong function arguments
- Incorrect join conditions
`

var text2SQLUserPrompt = MustNewTemplate(`Context and Tables:
{{ table_info }}

Examples:
User input: How many employees are there
Your response: SELECT COUNT(*) FROM Employee

User input: How many tracks are there in the album with ID 5?
Your response: SELECT COUNT(*) FROM Track WHERE AlbumId = 5;

User input: Which albums are from the year 2000?
Your response: SELECT * FROM Album WHERE YEAR(ReleaseDate) = 2000;

User input: List all tracks in the 'Rock' genre.
Your response: SELECT * FROM Track WHERE GenreId = (SELECT GenreId FROM Genre WHERE Name = 'Rock');


Now, the user input is : {{ query }}
`)

// Text2SQLMessages builds the chat messages for generating SQL from a
// natural-language question and a table schema description.
func Text2SQLMessages(tableInfo, query string) ([]llms.Message, error) {
	user, err := text2SQLUserPrompt.Render(map[string]any{
		"table_info": tableInfo,
		"query":      query,
	})
	if err != nil {
		return nil, err
	}
	return []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, Text2SQLSystemPrompt),
		llms.MessageFromTextParts(llms.RoleHuman, user),
	}, nil
}
