package mysql

const insertDatasetSQL = `
INSERT INTO datasets
  (id, location, listing_type, sites, row_count)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  location     = VALUES(location),
  listing_type = VALUES(listing_type),
  sites        = VALUES(sites),
  row_count    = VALUES(row_count)
`

const deleteListingsSQL = `DELETE FROM listings WHERE dataset_id = ?`

const insertListingsPrefix = "INSERT INTO listings\n" +
	"  (dataset_id, ord, site_name, listing_type, property_type, status, currency,\n" +
	"   price, price_per_sqft, beds, baths, square_feet, lot_size, lot_unit,\n" +
	"   year_built, stories, agent_name, mls_id, description, img_src,\n" +
	"   latitude, longitude, posted_time, street_address, unit, city, state,\n" +
	"   zip_code, country, property_url, units_for_sale)\nVALUES "

const getDatasetSQL = `
SELECT id, location, listing_type, sites, row_count, created_at
FROM datasets
WHERE id = ?
`

const listDatasetsSQL = `
SELECT id, location, listing_type, sites, row_count, created_at
FROM datasets
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const getListingsSQL = `
SELECT site_name, listing_type, property_type, status, currency,
       price, price_per_sqft, beds, baths, square_feet, lot_size, lot_unit,
       year_built, stories, agent_name, mls_id, description, img_src,
       latitude, longitude, posted_time, street_address, unit, city, state,
       zip_code, country, property_url, units_for_sale
FROM listings
WHERE dataset_id = ?
ORDER BY ord
`
