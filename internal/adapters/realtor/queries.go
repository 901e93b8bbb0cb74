package realtor

// GraphQL documents for the rdc_search_srp endpoint. areaQuery interpolates
// the listing-type status (for_sale / for_rent / sold) before sending.
const areaQuery = `query Home_search(
		$city: String,
		$county: [String],
		$state_code: String,
		$postal_code: String
		$offset: Int,
	) {
		home_search(
			query: {
				city: $city
				county: $county
				postal_code: $postal_code
				state_code: $state_code
				status: %s
			}
			limit: 200
			offset: $offset
		) {
			count
			total
			results {
				property_id
				description {
					baths
					beds
					lot_sqft
					sqft
					text
					sold_price
					stories
					year_built
					garage
					unit_number
					floor_number
				}
				location {
					address {
						city
						country
						line
						postal_code
						state_code
						state
						street_direction
						street_name
						street_number
						street_post_direction
						street_suffix
						unit
					}
				}
				list_price
				price_per_sqft
				source {
					id
				}
			}
		}
	}`

const addressQuery = `query Property($property_id: ID!) {
		property(id: $property_id) {
			property_id
			details {
				date_updated
				garage
				permalink
				year_built
				stories
			}
			address {
				address_validation_code
				city
				country
				county
				line
				postal_code
				state_code
				street_direction
				street_name
				street_number
				street_suffix
				street_post_direction
				unit_value
				unit
				unit_descriptor
				zip
			}
			basic {
				baths
				beds
				price
				sqft
				lot_sqft
				type
				sold_price
			}
			public_record {
				lot_size
				sqft
				stories
				units
				year_built
			}
		}
	}`
