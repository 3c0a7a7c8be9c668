// Package testutil provides OpenAPI fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasbind/parser"
)

// PetStore20 is an OAS 2.0 document covering every parameter location.
const PetStore20 = `
swagger: "2.0"
info:
  title: Swagger Petstore
  version: 1.0.0
consumes:
  - application/json
  - text/plain
paths:
  /api/pets:
    get:
      operationId: findPets
      parameters:
        - name: tags
          in: query
          type: array
          items:
            type: string
          collectionFormat: csv
        - name: limit
          in: query
          type: integer
          format: int32
          minimum: 1
          maximum: 100
          default: 20
        - name: X-Request-Id
          in: header
          type: string
          required: true
    post:
      operationId: addPet
      consumes:
        - application/x-www-form-urlencoded
        - multipart/form-data
      parameters:
        - name: Name
          in: formData
          type: string
          required: true
        - name: Age
          in: formData
          type: integer
          minimum: 0
        - name: Vaccinated
          in: formData
          type: boolean
          default: false
  /api/pets/{PetName}:
    parameters:
      - name: PetName
        in: path
        type: string
        required: true
        pattern: "^[a-z]+$"
    patch:
      operationId: updatePet
      parameters:
        - name: PetData
          in: body
          required: true
          schema:
            $ref: "#/definitions/Pet"
definitions:
  Pet:
    type: object
    required:
      - Name
    properties:
      Name:
        type: string
        minLength: 1
      Type:
        type: string
        enum:
          - dog
          - cat
      Tags:
        type: array
        items:
          type: string
`

// PetStore30 is the OAS 3.0 equivalent of PetStore20.
const PetStore30 = `
openapi: 3.0.3
info:
  title: Swagger Petstore
  version: 1.0.0
paths:
  /api/pets:
    get:
      operationId: findPets
      parameters:
        - $ref: "#/components/parameters/tags"
        - name: limit
          in: query
          schema:
            type: integer
            minimum: 1
            maximum: 100
            default: 20
        - name: filter
          in: query
          content:
            application/json:
              schema:
                type: object
                properties:
                  color:
                    type: string
        - name: X-Request-Id
          in: header
          required: true
          schema:
            type: string
  /api/pets/{PetName}:
    parameters:
      - name: PetName
        in: path
        required: true
        schema:
          type: string
          pattern: "^[a-z]+$"
    patch:
      operationId: updatePet
      requestBody:
        $ref: "#/components/requestBodies/PetData"
components:
  parameters:
    tags:
      name: tags
      in: query
      style: form
      explode: false
      schema:
        type: array
        items:
          type: string
  requestBodies:
    PetData:
      required: true
      x-body-name: PetData
      content:
        application/json:
          schema:
            $ref: "#/components/schemas/Pet"
  schemas:
    Pet:
      type: object
      required:
        - Name
      properties:
        Name:
          type: string
          minLength: 1
        Type:
          type: string
          enum:
            - dog
            - cat
        Nickname:
          type: string
          nullable: true
`

// CircularSchema declares a schema that references itself.
const CircularSchema = `
swagger: "2.0"
info:
  title: Tree
  version: 1.0.0
paths:
  /nodes:
    post:
      parameters:
        - name: node
          in: body
          schema:
            $ref: "#/definitions/Node"
definitions:
  Node:
    type: object
    properties:
      next:
        $ref: "#/definitions/Node"
`

// ParseFixture parses doc and fails the test on error.
func ParseFixture(t testing.TB, doc string) *parser.ParseResult {
	t.Helper()
	result, err := parser.ParseWithOptions(
		parser.WithBytes([]byte(doc)),
		parser.WithSourceName("fixture.yaml"),
	)
	require.NoError(t, err)
	return result
}
