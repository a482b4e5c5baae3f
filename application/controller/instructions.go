package controller

import "fmt"

// BuildInstructions returns the prompt sent to the agent on every round.
func BuildInstructions(task string) string {
	return fmt.Sprintf(`Task: %s

You are an automation assistant that replies with the next action(s) to take. Determine if the task is complete; if so, respond with the 'exit' action.
Please prevent infinite loops by checking the previously executed commands in commands.txt.
Only use the allowed commands listed below. Respond ONLY with a raw JSON object (not a quoted JSON string) using one of these shapes:
1) Single action: {"action": "open_url", "args": ["http://example.com"]}
2) Multiple actions: {"actions": [{"action": "click_element", "args": ["id=submitBtn"]}, {"action": "send_keys", "args": ["name=username", "myuser"]}]}

Allowed actions and arg formats:
- open_url(url) => args: [url]
- click_element(selector) => args: [selector] where selector is type=value (id=..., name=..., class=..., tag=..., text=..., attr=key=value)
- send_keys(selector, text) => args: [selector, text]
- exit => args: [] (closes the controller when the task is FINISHED)
- break_loop => args: [] (stop automated polling temporarily)
- noop => args: [] (no operation; can be used to wait)

When choosing element identifiers (id, name, class) consult page.txt, which contains the page HTML. The screenshot.png attachment shows the rendered page.
Do not include any explanatory text outside the JSON object. If your reply gets wrapped as a JSON string, return the raw object instead; the controller attempts one secondary parse but raw JSON is preferred.
`, task)
}

const commandHelp = `
Available commands:
  open_url(http://example.com)
  click_element(type=value)
  send_keys(type=value, text=yourtext)
  auto                -> resume the automated agent loop (manual mode)
  autoconfirm on|off  -> when on, agent suggestions are executed automatically
  exit
Selector types: id, class, name, tag, text, attr
  Examples:
    click_element(id=submitBtn)
    send_keys(name=username, text=David123)
    click_element(attr=data-test=login-button)

`
