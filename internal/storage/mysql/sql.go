package mysql

const selectBusinessesSQL = `
SELECT id, name, row_index
FROM businesses
ORDER BY row_index`

// Note: `text` is reserved; keep it quoted everywhere.
const selectReviewsSQL = "SELECT id, row_index, business_name, author, rating, `text`, review_date, source,\n" +
	"  status, sentiment, intent, response, error_message\n" +
	"FROM reviews\n" +
	"ORDER BY row_index"

const nextBusinessRowSQL = `SELECT COALESCE(MAX(row_index), 1) + 1 FROM businesses FOR UPDATE`

const nextReviewRowSQL = `SELECT COALESCE(MAX(row_index), 1) + 1 FROM reviews FOR UPDATE`

const insertBusinessSQL = `INSERT INTO businesses (name, row_index) VALUES (?, ?)`

const insertReviewSQL = "INSERT INTO reviews\n" +
	"  (row_index, business_name, author, rating, `text`, review_date, source, status)\n" +
	"VALUES (?, ?, ?, ?, ?, ?, ?, ?)"

// reviewColumns maps patch fields to the columns they write. analysis spans two.
var reviewColumns = map[string][]string{
	"status":       {"status"},
	"analysis":     {"sentiment", "intent"},
	"response":     {"response"},
	"errorMessage": {"error_message"},
}
