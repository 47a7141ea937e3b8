package prompt

// QueryPromptTemplate instructs the model to turn a free-text query into a
// structured Open Library request. Args: user query.
// Keep this short - every token costs latency on a local model.
const QueryPromptTemplate = `Based on the user's query: '%s', construct a JSON object to query Open Library. Extract up to 6 essential keywords. limit by default is 3 unless the user asks for a different amount of results
options for query_type are 'q', 'author', 'title'
The format should be:
{
  "query_type": "q",
  "query_value": "keywords",
  "limit": "3"
}
`

// RefinePromptTemplate instructs the model to narrate search results back to
// the user. Args: user query, bulleted book details.
const RefinePromptTemplate = `The user asked: '%s'. Based on the following books:
%s
Write an engaging intro, include the book details as bullets, and a happy outro. Use plain text.`
