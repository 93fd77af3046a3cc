package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteError(t *testing.T) {
	Convey("Given a response recorder", t, func() {
		rec := httptest.NewRecorder()

		Convey("When an error without detalle is written", func() {
			WriteError(rec, http.StatusNotFound, MsgNoEncontrado, nil)

			Convey("Then only mensaje is present", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var body map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["mensaje"], ShouldEqual, "Usuario no encontrado")
				_, ok := body["detalle"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When an error with structured detalle is written", func() {
			WriteError(rec, http.StatusBadRequest, MsgDatosInvalido, map[string]string{"campo": "correo"})

			Convey("Then detalle keeps its shape", func() {
				var body Error
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Mensaje, ShouldEqual, "Datos inválidos")
				So(body.Detalle, ShouldResemble, map[string]any{"campo": "correo"})
			})
		})
	})
}
