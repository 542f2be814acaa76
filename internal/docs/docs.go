// Package docs registers the swagger specification served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created"
					}
				}
			}
		},
		"/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log in",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/auth/refresh": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Rotate tokens",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/profile": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Current user",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/dashboard": {
			"get": {
				"tags": [
					"dashboard"
				],
				"summary": "Dashboard",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/bank-accounts": {
			"post": {
				"tags": [
					"bank-accounts"
				],
				"summary": "Create bank account",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"bank-accounts"
				],
				"summary": "List bank accounts",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/bank-accounts/{id}": {
			"get": {
				"tags": [
					"bank-accounts"
				],
				"summary": "Get bank account",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"bank-accounts"
				],
				"summary": "Update bank account",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"bank-accounts"
				],
				"summary": "Delete bank account",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/bank-accounts/{id}/adjust": {
			"post": {
				"tags": [
					"bank-accounts"
				],
				"summary": "Adjust balance",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/bank-accounts/{id}/recalculate": {
			"post": {
				"tags": [
					"bank-accounts"
				],
				"summary": "Recalculate balance",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/bank-accounts/{id}/transactions": {
			"get": {
				"tags": [
					"bank-accounts"
				],
				"summary": "List account transactions",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/categories": {
			"post": {
				"tags": [
					"categories"
				],
				"summary": "Create category",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"categories"
				],
				"summary": "List categories",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/categories/tree": {
			"get": {
				"tags": [
					"categories"
				],
				"summary": "Category tree",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/categories/{id}": {
			"get": {
				"tags": [
					"categories"
				],
				"summary": "Get category",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"categories"
				],
				"summary": "Update category",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"categories"
				],
				"summary": "Delete category",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/envelopes": {
			"post": {
				"tags": [
					"envelopes"
				],
				"summary": "Create envelope",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"envelopes"
				],
				"summary": "List envelopes",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/envelopes/reallocate": {
			"post": {
				"tags": [
					"envelopes"
				],
				"summary": "Reallocate between envelopes",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/envelopes/{id}": {
			"get": {
				"tags": [
					"envelopes"
				],
				"summary": "Get envelope",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"envelopes"
				],
				"summary": "Update envelope",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"envelopes"
				],
				"summary": "Delete envelope",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/envelopes/{id}/adjust": {
			"post": {
				"tags": [
					"envelopes"
				],
				"summary": "Adjust envelope",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/envelopes/{id}/history": {
			"get": {
				"tags": [
					"envelopes"
				],
				"summary": "Envelope history",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/payees": {
			"post": {
				"tags": [
					"payees"
				],
				"summary": "Create payee",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"payees"
				],
				"summary": "List payees",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/payees/{id}": {
			"get": {
				"tags": [
					"payees"
				],
				"summary": "Get payee",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"payees"
				],
				"summary": "Update payee",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"payees"
				],
				"summary": "Delete payee",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/transactions": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Create transaction",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "List transactions",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/transactions/summary": {
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "Transaction summary",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/transactions/{id}": {
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "Get transaction",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"transactions"
				],
				"summary": "Update transaction",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"transactions"
				],
				"summary": "Delete transaction",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/wish-lists": {
			"post": {
				"tags": [
					"wish-lists"
				],
				"summary": "Create wish list",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"wish-lists"
				],
				"summary": "List wish lists",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/wish-lists/{id}": {
			"get": {
				"tags": [
					"wish-lists"
				],
				"summary": "Get wish list",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"wish-lists"
				],
				"summary": "Update wish list",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"wish-lists"
				],
				"summary": "Delete wish list",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/wish-lists/{id}/items": {
			"post": {
				"tags": [
					"wish-lists"
				],
				"summary": "Add item",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"get": {
				"tags": [
					"wish-lists"
				],
				"summary": "List items",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/wish-lists/items/{item_id}": {
			"put": {
				"tags": [
					"wish-lists"
				],
				"summary": "Update item",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "item id",
						"name": "item_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"wish-lists"
				],
				"summary": "Delete item",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "item id",
						"name": "item_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/wish-lists/items/{item_id}/purchase": {
			"post": {
				"tags": [
					"wish-lists"
				],
				"summary": "Mark item purchased",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "item id",
						"name": "item_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		},
		"/pipeline/reconcile": {
			"post": {
				"tags": [
					"pipeline"
				],
				"summary": "Reconcile balances",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Pipeline API key",
						"name": "X-API-Key",
						"in": "header",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/handlers.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handlers.ErrorDetail": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"handlers.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"$ref": "#/definitions/handlers.ErrorDetail"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and JWT token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Cash Stuffing API",
	Description:      "Envelope budgeting: bank accounts, envelopes, transactions and wish lists.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
