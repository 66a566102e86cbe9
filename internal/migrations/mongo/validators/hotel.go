package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = []string{"int", "long"}

var roomTypeSchema = bson.M{
	"bsonType": "object",
	"required": []string{"room_info", "price", "stock"},
	"properties": bson.M{
		"id": bson.M{
			"bsonType":  "string",
			"minLength": 36,
			"maxLength": 36,
		},
		"room_info": bson.M{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 100,
		},
		"display_name": bson.M{
			"bsonType":  "string",
			"maxLength": 100,
		},
		"price": bson.M{
			"bsonType": integer,
			"minimum":  0,
		},
		"stock": bson.M{
			"bsonType": integer,
			"minimum":  0,
			"maximum":  1000,
		},
		"room_numbers": bson.M{
			"bsonType": "array",
			"items":    bson.M{"bsonType": "string"},
		},
		"aliases": bson.M{
			"bsonType": "array",
			"items": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
		},
	},
}

var HotelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"contact_phone",
			"room_types",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"contact_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{7,14}$`,
			},

			"time_zone": bson.M{
				"bsonType": "string",
			},

			"release_hour": bson.M{
				"bsonType": integer,
				"minimum":  0,
				"maximum":  23,
			},

			"room_types": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 50,
				"items":    roomTypeSchema,
			},

			"grid_settings": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"floors": bson.M{
						"bsonType": []string{"array", "null"},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
