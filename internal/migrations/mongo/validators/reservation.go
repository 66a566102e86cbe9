package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hotel_id",
			"guest_name",
			"check_in",
			"check_out",
			"type",
			"room_info",
			"status",
			"price",
			"source",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"hotel_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"guest_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"phone": bson.M{
				"bsonType": "string",
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"stay", "dayUse"},
			},

			"room_type_id": bson.M{
				"bsonType": "string",
			},

			"room_info": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"room_number": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"checked_in",
					"checked_out",
				},
			},

			"price": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"source": bson.M{
				"bsonType": "string",
				"enum": []string{
					"direct",
					"ota",
					"phone",
					"walk_in",
				},
			},

			"external_id": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"memo": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
