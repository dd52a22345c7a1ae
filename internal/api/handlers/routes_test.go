package handlers

import (
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
)

func TestRegisterCheck_ErrorResponses(t *testing.T) {
	_, api := humatest.New(t)
	RegisterCheck(api, nil)

	doc := api.OpenAPI()
	if _, ok := doc.Components.Schemas.Map()["CheckError"]; !ok {
		t.Fatal("CheckError schema not registered")
	}

	for _, path := range []string{CheckPath, "/v1/check"} {
		item := doc.Paths[path]
		if item == nil || item.Post == nil {
			t.Fatalf("no POST operation at %s", path)
		}
		for _, code := range []string{"400", "401", "500"} {
			t.Run(path+" "+code, func(t *testing.T) {
				resp := item.Post.Responses[code]
				if resp == nil {
					t.Fatalf("response %s not documented", code)
				}
				media := resp.Content["application/json"]
				if media == nil || media.Schema == nil {
					t.Fatalf("response %s has no application/json schema", code)
				}
				if want := "#/components/schemas/CheckError"; media.Schema.Ref != want {
					t.Errorf("schema ref = %q, want %q", media.Schema.Ref, want)
				}
			})
		}
		if _, ok := item.Post.Responses["default"]; ok {
			t.Errorf("%s: unexpected default ErrorModel response", path)
		}
	}
}
