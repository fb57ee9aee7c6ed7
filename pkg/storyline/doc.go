/*
Package storyline parses storyline documents into the domain model.

A document is a JSON (or YAML) object with a top-level "missions" mapping:

	{
	  "missions": {
	    "intro": {
	      "title": "Welcome",
	      "steps": {
	        "step-1": {
	          "npcId": "elder",
	          "nextStep": "step-2",
	          "dialog": [
	            {"name": "Elder", "line": "Hello, $player"},
	            {"type": "input.text", "question": "What is your name?", "storeKey": "player_name"}
	          ]
	        }
	      }
	    }
	  }
	}

Parsing is total: missing text is replaced by defaults, malformed fragments are dropped or
defaulted, and every substitution is reported in Storyline.Diagnostics.
*/
package storyline
