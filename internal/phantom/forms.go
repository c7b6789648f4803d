package phantom

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// renderForm turns a form description into log lines. It never fails:
// malformed payloads and unknown elements are rendered raw.
func renderForm(player string, formID uint32, data string) []string {
	prefix := fmt.Sprintf("[FORM#%d]", formID)
	if !gjson.Valid(data) {
		return []string{fmt.Sprintf("%s %s received malformed form: %s", prefix, player, data)}
	}
	form := gjson.Parse(data)
	kind := form.Get("type").String()
	lines := []string{fmt.Sprintf("%s %s received %s:", prefix, player, kind)}

	switch kind {
	case "modal":
		lines = append(lines,
			fmt.Sprintf("%s Title: %s", prefix, form.Get("title").String()),
			fmt.Sprintf("%s Content: %s", prefix, form.Get("content").String()),
			fmt.Sprintf("%s %s => true", prefix, form.Get("button1").String()),
			fmt.Sprintf("%s %s => false", prefix, form.Get("button2").String()),
		)
	case "form":
		lines = append(lines,
			fmt.Sprintf("%s Title: %s", prefix, form.Get("title").String()),
			fmt.Sprintf("%s Content: %s", prefix, form.Get("content").String()),
			fmt.Sprintf("%s Close => null", prefix),
		)
		for i, button := range form.Get("buttons").Array() {
			image := ""
			if img := button.Get("image"); img.Exists() {
				image = fmt.Sprintf("%s:%s ", img.Get("type").String(), img.Get("data").String())
			}
			lines = append(lines, fmt.Sprintf("%s Option %s %s=> %d", prefix, button.Get("text").String(), image, i))
		}
	case "custom_form":
		lines = append(lines,
			fmt.Sprintf("%s Title: %s", prefix, form.Get("title").String()),
			prefix+" [",
		)
		for _, element := range form.Get("content").Array() {
			lines = append(lines, fmt.Sprintf("%s     %s ,", prefix, renderElement(element)))
		}
		lines = append(lines, prefix+" ]")
	default:
		lines = append(lines, fmt.Sprintf("%s Unknown form: %s", prefix, form.Raw))
	}
	return lines
}

func renderElement(el gjson.Result) string {
	text := el.Get("text").String()
	def := el.Get("default")
	switch el.Get("type").String() {
	case "label":
		return fmt.Sprintf("Label: %s => null", text)
	case "toggle":
		return fmt.Sprintf("Toggle: %s => true | false = %t", text, def.Bool())
	case "slider":
		out := fmt.Sprintf("Slider: %s => %s-%s", text, el.Get("min").String(), el.Get("max").String())
		if step := el.Get("step"); step.Exists() {
			out += fmt.Sprintf(" (step: %s)", step.String())
		}
		return out + defaultSuffix(def)
	case "step_slider":
		return fmt.Sprintf("Step Slider: %s => %s", text, indexedOptions(el.Get("steps"))) + defaultSuffix(def)
	case "dropdown":
		return fmt.Sprintf("Dropdown: %s => %s", text, indexedOptions(el.Get("options"))) + defaultSuffix(def)
	case "input":
		return fmt.Sprintf("Input: %s (%s)", text, el.Get("placeholder").String()) + defaultSuffix(def)
	default:
		return "Unknown element: " + el.Raw
	}
}

func indexedOptions(list gjson.Result) string {
	items := list.Array()
	out := make([]string, 0, len(items))
	for i, item := range items {
		out = append(out, fmt.Sprintf("%s => %d", item.String(), i))
	}
	return strings.Join(out, ", ")
}

func defaultSuffix(def gjson.Result) string {
	if !def.Exists() {
		return ""
	}
	return " = " + def.String()
}
