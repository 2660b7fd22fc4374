package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockfall/ecs"
)

// ComponentInspectorWindow shows the components of the entity selected in
// the entity browser and lets scalar fields be edited in place. The zero
// value is ready to use.
type ComponentInspectorWindow struct {
	fields fieldCache
}

func (w *ComponentInspectorWindow) render(storage *ecs.Storage, selected *ecs.EntityRef) {
	if !imgui.BeginV("Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	id, ok := storage.ResolveEntityRef(selected)
	if !ok {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	archetype := storage.GetArchetypeById(id.ArchetypeId())
	if archetype == nil {
		imgui.Text(fmt.Sprintf("Entity %d is gone", id))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %d", id))
	imgui.Text(fmt.Sprintf("Archetype: 0x%X", archetype.ID()))
	imgui.Separator()

	for _, compType := range archetype.Types() {
		component := storage.GetComponent(id, compType)
		if component == nil {
			continue
		}

		if imgui.TreeNodeStr(compType.String()) {
			w.renderComponent(component)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (w *ComponentInspectorWindow) renderComponent(component any) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	// Components may be primitives, not just structs.
	if val.Kind() != reflect.Struct {
		w.renderValue("value", val)
		return
	}

	w.renderStructFields(val)
}

func (w *ComponentInspectorWindow) renderStructFields(val reflect.Value) {
	for _, field := range w.fields.get(val.Type()) {
		w.renderValue(field.name, val.Field(field.index))
	}
}

// renderValue draws one editable widget for the value. Edits write straight
// through the reflected value, which aliases component storage.
func (w *ComponentInspectorWindow) renderValue(name string, val reflect.Value) {
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
			return
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			w.renderStructFields(val)
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}
