package mysql

// review_id is the natural key; rows without one (NULL) are always inserted,
// so the importer never sends them.
const insertReviewsPrefix = "INSERT INTO reviews\n  (review_id, source_seq, rating, year, month, location, branch)\nVALUES "

const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  source_seq = VALUES(source_seq),\n" +
	"  rating   = VALUES(rating),\n" +
	"  year     = VALUES(year),\n" +
	"  month    = VALUES(month),\n" +
	"  location = VALUES(location),\n" +
	"  branch   = VALUES(branch)\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Rows come back in source-file order. Batches are written concurrently, so
// the auto-increment id says nothing about file order; rows written without a
// position go last, in insertion order.
const listReviewsSQL = `
SELECT
  review_id,
  source_seq,
  rating,
  year,
  month,
  location,
  branch
FROM reviews
ORDER BY source_seq IS NULL, source_seq, id
`

const countReviewsSQL = `SELECT COUNT(*) FROM reviews`
